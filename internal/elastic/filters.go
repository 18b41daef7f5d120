package elastic

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/utafrali/elasticbridge/internal/search"
)

// compileFilter recursively compiles a filter expression tree into a native
// bool query tree, expressed as the raw query DSL. The schema drives
// type-sensitive value encoding. The compiler is pure and total over the
// closed filter set: a nil or unrecognized filter compiles to nil ("no
// filter") rather than failing, so one malformed filter never aborts an
// otherwise valid query.
func compileFilter(filter search.Filter, fields map[string]*Property) map[string]any {
	switch f := filter.(type) {
	case *search.IDsFilter:
		return compileIDsFilter(f)
	case *search.TermFilter:
		return compileTermFilter(f, fields)
	case *search.RangeFilter:
		return compileRangeFilter(f, fields)
	case *search.GeoDistanceFilter:
		return compileGeoDistanceFilter(f)
	case *search.WildcardFilter:
		return compileWildcardFilter(f)
	case *search.NotFilter:
		return compileNotFilter(f, fields)
	case *search.AndFilter:
		return compileAndFilter(f, fields)
	case *search.OrFilter:
		return compileOrFilter(f, fields)
	default:
		return nil
	}
}

func compileIDsFilter(f *search.IDsFilter) map[string]any {
	if f == nil || len(f.Values) == 0 {
		return nil
	}
	return map[string]any{
		"ids": map[string]any{"values": f.Values},
	}
}

// compileTermFilter encodes term values by the field's native type: boolean
// properties coerce "1"/"0" and any-cased "true"/"false" to the boolean
// literals, date properties pass values through pre-formatted, and all other
// types lower-case the raw string.
func compileTermFilter(f *search.TermFilter, fields map[string]*Property) map[string]any {
	if f == nil {
		return nil
	}

	property := fields[toElasticFieldName(f.FieldName)]

	values := make([]any, 0, len(f.Values))
	switch {
	case property != nil && property.Type == PropertyBoolean:
		for _, v := range f.Values {
			values = append(values, booleanTermValue(v))
		}
	case property != nil && property.Type == PropertyDate:
		for _, v := range f.Values {
			values = append(values, v)
		}
	default:
		for _, v := range f.Values {
			values = append(values, strings.ToLower(v))
		}
	}

	return map[string]any{
		"terms": map[string]any{
			toElasticFieldName(f.FieldName): values,
		},
	}
}

func booleanTermValue(v string) string {
	switch strings.ToLower(v) {
	case "1", "true":
		return "true"
	case "0", "false":
		return "false"
	default:
		return strings.ToLower(v)
	}
}

// compileRangeFilter builds one range clause per value window, OR-combined.
// Date-typed fields parse bounds as timestamps, everything else as doubles;
// an unparsable bound is open on that side rather than failing the filter.
func compileRangeFilter(f *search.RangeFilter, fields map[string]*Property) map[string]any {
	if f == nil || len(f.Values) == 0 {
		return nil
	}

	fieldName := toElasticFieldName(f.FieldName)
	property := fields[fieldName]
	isDate := property != nil && property.Type == PropertyDate

	var result map[string]any
	for _, value := range f.Values {
		var clause map[string]any
		if isDate {
			clause = dateRangeClause(fieldName, value)
		} else {
			clause = numberRangeClause(fieldName, value)
		}
		result = orQueries(result, clause)
	}
	return result
}

func numberRangeClause(fieldName string, value search.RangeValue) map[string]any {
	bounds := make(map[string]any)

	if parsed, err := strconv.ParseFloat(value.Lower, 64); value.Lower != "" && err == nil {
		bounds[boundKey(value.IncludeLower, true)] = parsed
	}
	if parsed, err := strconv.ParseFloat(value.Upper, 64); value.Upper != "" && err == nil {
		bounds[boundKey(value.IncludeUpper, false)] = parsed
	}

	return map[string]any{
		"range": map[string]any{fieldName: bounds},
	}
}

func dateRangeClause(fieldName string, value search.RangeValue) map[string]any {
	bounds := make(map[string]any)

	if parsed, ok := parseTimestamp(value.Lower); ok {
		bounds[boundKey(value.IncludeLower, true)] = parsed.Format(time.RFC3339)
	}
	if parsed, ok := parseTimestamp(value.Upper); ok {
		bounds[boundKey(value.IncludeUpper, false)] = parsed.Format(time.RFC3339)
	}

	return map[string]any{
		"range": map[string]any{fieldName: bounds},
	}
}

func boundKey(inclusive, lower bool) string {
	switch {
	case lower && inclusive:
		return "gte"
	case lower:
		return "gt"
	case inclusive:
		return "lte"
	default:
		return "lt"
	}
}

// timestampLayouts are tried in order when parsing range bounds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func compileGeoDistanceFilter(f *search.GeoDistanceFilter) map[string]any {
	if f == nil {
		return nil
	}
	return map[string]any{
		"geo_distance": map[string]any{
			"distance": fmt.Sprintf("%gkm", f.Distance),
			toElasticFieldName(f.FieldName): map[string]any{
				"lat": f.Location.Latitude,
				"lon": f.Location.Longitude,
			},
		},
	}
}

func compileWildcardFilter(f *search.WildcardFilter) map[string]any {
	if f == nil {
		return nil
	}
	return map[string]any{
		"wildcard": map[string]any{
			toElasticFieldName(f.FieldName): map[string]any{"value": f.Value},
		},
	}
}

func compileNotFilter(f *search.NotFilter, fields map[string]*Property) map[string]any {
	if f == nil || f.Child == nil {
		return nil
	}
	child := compileFilter(f.Child, fields)
	if child == nil {
		return nil
	}
	return map[string]any{
		"bool": map[string]any{"must_not": []any{child}},
	}
}

func compileAndFilter(f *search.AndFilter, fields map[string]*Property) map[string]any {
	if f == nil {
		return nil
	}
	var result map[string]any
	for _, child := range f.Children {
		result = andQueries(result, compileFilter(child, fields))
	}
	return result
}

func compileOrFilter(f *search.OrFilter, fields map[string]*Property) map[string]any {
	if f == nil {
		return nil
	}
	var result map[string]any
	for _, child := range f.Children {
		result = orQueries(result, compileFilter(child, fields))
	}
	return result
}

// andQueries folds two queries with logical AND, skipping nils. An existing
// bool-must clause is extended in place so chains stay flat.
func andQueries(a, b map[string]any) map[string]any {
	return foldQueries(a, b, "must")
}

// orQueries folds two queries with logical OR, skipping nils.
func orQueries(a, b map[string]any) map[string]any {
	return foldQueries(a, b, "should")
}

func foldQueries(a, b map[string]any, occur string) map[string]any {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	if clauses, ok := boolClauses(a, occur); ok {
		return map[string]any{
			"bool": map[string]any{occur: append(clauses, b)},
		}
	}
	return map[string]any{
		"bool": map[string]any{occur: []any{a, b}},
	}
}

// boolClauses extracts the clause list when q is a bool query consisting of
// exactly one occurrence clause of the given kind.
func boolClauses(q map[string]any, occur string) ([]any, bool) {
	if len(q) != 1 {
		return nil, false
	}
	boolQuery, ok := q["bool"].(map[string]any)
	if !ok || len(boolQuery) != 1 {
		return nil, false
	}
	clauses, ok := boolQuery[occur].([]any)
	return clauses, ok
}
