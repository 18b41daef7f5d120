package elastic

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/utafrali/elasticbridge/internal/search"
)

// DocumentConverter turns one abstract document into its native
// representation, registering any newly discovered properties into the
// property map passed in by the caller.
type DocumentConverter struct {
	analyzer string

	maxInputLength int
	maxTokens      int
	preserved      string
}

// NewDocumentConverter creates a converter with the given searchable-field
// analyzer and suggestion tokenizer settings.
func NewDocumentConverter(opts *Options) *DocumentConverter {
	return &DocumentConverter{
		analyzer:       searchableFieldAnalyzerName,
		maxInputLength: opts.SuggestionMaxLength,
		maxTokens:      opts.SuggestionMaxTokens,
		preserved:      opts.PreservedSymbols,
	}
}

// Convert renders a document into the native field map. Fields are processed
// in normalized-name order so merging of colliding names is deterministic.
// Two abstract fields may normalize to the same native name; their values are
// merged into one list. New properties discovered along the way are added to
// properties.
func (c *DocumentConverter) Convert(doc search.Document, properties map[string]*Property) (map[string]any, error) {
	type namedField struct {
		name  string
		field search.Field
	}

	fields := make([]namedField, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		fields = append(fields, namedField{name: toElasticFieldName(f.Name), field: f})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].name < fields[j].name })

	result := make(map[string]any, len(fields))

	for _, nf := range fields {
		fieldName, field := nf.name, nf.field

		if current, ok := result[fieldName]; ok {
			result[fieldName] = mergeValues(current, field.Values)
			continue
		}

		property, ok := properties[fieldName]
		if !ok {
			created, err := createProperty(field)
			if err != nil {
				return nil, err
			}
			configureProperty(created, field, c.analyzer)
			properties[fieldName] = created
			property = created
		}

		if fieldName == objectFieldName {
			continue
		}

		value, err := fieldValue(field, property)
		if err != nil {
			return nil, err
		}
		if value != nil {
			result[fieldName] = value
		}

		if field.IsSuggestable {
			c.addCompletion(result, properties, fieldName, field)
		}
	}

	return result, nil
}

// addCompletion derives the completion payload for a suggestable field and
// registers its companion completion property. A payload with zero tokens is
// omitted entirely.
func (c *DocumentConverter) addCompletion(result map[string]any, properties map[string]*Property, fieldName string, field search.Field) {
	inputs := c.CompletionInputs(field.Values)
	if len(inputs) == 0 {
		return
	}

	suggestName := suggestionFieldName(fieldName)
	if _, ok := properties[suggestName]; !ok {
		properties[suggestName] = &Property{
			Type:           PropertyCompletion,
			MaxInputLength: c.maxInputLength,
		}
	}

	result[suggestName] = map[string]any{"input": inputs}
}

// fieldValue computes the native value for one field. Geo-point fields
// render to {lat, lon} pairs; all other fields keep their raw values, as a
// list when the field is a collection or carries more than one value.
func fieldValue(field search.Field, property *Property) (any, error) {
	isCollection := field.IsCollection || len(field.Values) > 1

	if property != nil && property.Type == PropertyGeoPoint {
		if isCollection {
			points := make([]any, 0, len(field.Values))
			for _, v := range field.Values {
				point, err := geoValue(field.Name, v)
				if err != nil {
					return nil, err
				}
				points = append(points, point)
			}
			return points, nil
		}
		if field.Value() == nil {
			return nil, nil
		}
		return geoValue(field.Name, field.Value())
	}

	if isCollection {
		return field.Values, nil
	}
	return field.Value(), nil
}

func geoValue(fieldName string, value any) (map[string]any, error) {
	var point search.GeoPoint
	switch v := value.(type) {
	case search.GeoPoint:
		point = v
	case *search.GeoPoint:
		if v == nil {
			return nil, nil
		}
		point = *v
	default:
		return nil, fmt.Errorf("field %q: geo point value has type %T", fieldName, value)
	}
	return map[string]any{"lat": point.Latitude, "lon": point.Longitude}, nil
}

// mergeValues folds the values of a second field with the same native name
// into the already stored value, always producing a list.
func mergeValues(current any, values []any) []any {
	var merged []any
	if list, ok := current.([]any); ok {
		merged = append(merged, list...)
	} else {
		merged = append(merged, current)
	}
	return append(merged, values...)
}

// CompletionInputs derives type-ahead inputs from a field's values. Each
// value is lower-cased and split on whitespace; words are trimmed of leading
// and trailing punctuation except for the preserved symbol set; then the
// progressive prefixes of the word sequence are emitted, joined with single
// spaces, up to maxTokens words. Phrase length is monotonically non-decreasing
// in word count, so generation stops at the first phrase over maxInputLength.
// Outputs are deduplicated and sorted ascending, which also makes the result
// independent of the input collection's order.
func (c *DocumentConverter) CompletionInputs(values []any) []string {
	seen := make(map[string]struct{})

	for _, value := range values {
		if value == nil {
			continue
		}

		text := strings.ToLower(fmt.Sprint(value))
		if strings.TrimSpace(text) == "" {
			continue
		}

		words := make([]string, 0, 8)
		for _, word := range strings.Fields(text) {
			if trimmed := c.trimWord(word); trimmed != "" {
				words = append(words, trimmed)
			}
		}

		limit := len(words)
		if limit > c.maxTokens {
			limit = c.maxTokens
		}
		for n := 1; n <= limit; n++ {
			phrase := strings.Join(words[:n], " ")
			if len(phrase) > c.maxInputLength {
				break
			}
			seen[phrase] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil
	}

	result := make([]string, 0, len(seen))
	for phrase := range seen {
		result = append(result, phrase)
	}
	sort.Strings(result)
	return result
}

// trimWord strips punctuation from a word's edges, keeping the preserved
// symbols (so "c#" survives) and anything inside the word (so "a/b" does).
func (c *DocumentConverter) trimWord(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		if strings.ContainsRune(c.preserved, r) {
			return false
		}
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
