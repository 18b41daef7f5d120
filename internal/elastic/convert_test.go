package elastic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/elasticbridge/internal/search"
)

func newTestConverter() *DocumentConverter {
	opts := Options{}.withDefaults()
	return NewDocumentConverter(&opts)
}

// ============================================================================
// Completion Input Tests
// ============================================================================

func TestCompletionInputs_ProgressivePrefixes(t *testing.T) {
	c := newTestConverter()
	inputs := c.CompletionInputs([]any{"Hello World"})
	assert.Equal(t, []string{"hello", "hello world"}, inputs)
}

func TestCompletionInputs_PreservedSymbols(t *testing.T) {
	c := newTestConverter()
	inputs := c.CompletionInputs([]any{"C# .NET ASP.NET"})
	assert.Equal(t, []string{"c#", "c# net", "c# net asp.net"}, inputs)
}

func TestCompletionInputs_TrimsEdgePunctuation(t *testing.T) {
	c := newTestConverter()
	inputs := c.CompletionInputs([]any{"_test_"})
	assert.Equal(t, []string{"test"}, inputs)
}

func TestCompletionInputs_KeepsInnerSymbols(t *testing.T) {
	c := newTestConverter()
	inputs := c.CompletionInputs([]any{"a/b"})
	assert.Equal(t, []string{"a/b"}, inputs)
}

func TestCompletionInputs_SkipsNilAndBlankValues(t *testing.T) {
	c := newTestConverter()
	inputs := c.CompletionInputs([]any{nil, "", "   ", "one"})
	assert.Equal(t, []string{"one"}, inputs)
}

func TestCompletionInputs_StringifiesNumbers(t *testing.T) {
	c := newTestConverter()
	inputs := c.CompletionInputs([]any{42})
	assert.Equal(t, []string{"42"}, inputs)
}

func TestCompletionInputs_MaxTokensLimit(t *testing.T) {
	opts := Options{SuggestionMaxTokens: 2}.withDefaults()
	c := NewDocumentConverter(&opts)

	inputs := c.CompletionInputs([]any{"one two three"})
	assert.Equal(t, []string{"one", "one two"}, inputs)
}

func TestCompletionInputs_MaxLengthStopsGeneration(t *testing.T) {
	opts := Options{SuggestionMaxLength: 7}.withDefaults()
	c := NewDocumentConverter(&opts)

	inputs := c.CompletionInputs([]any{"aaa bbb ccc"})
	assert.Equal(t, []string{"aaa", "aaa bbb"}, inputs)
}

func TestCompletionInputs_DedupesAcrossValues(t *testing.T) {
	c := newTestConverter()
	inputs := c.CompletionInputs([]any{"Apple", "apple", "APPLE"})
	assert.Equal(t, []string{"apple"}, inputs)
}

func TestCompletionInputs_EmptyResult(t *testing.T) {
	c := newTestConverter()
	assert.Nil(t, c.CompletionInputs(nil))
	assert.Nil(t, c.CompletionInputs([]any{nil, "  ", "..."}))
}

// ============================================================================
// Document Conversion Tests
// ============================================================================

func TestConvert_RegistersNewProperties(t *testing.T) {
	c := newTestConverter()
	properties := map[string]*Property{}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: "Name", Values: []any{"Red Shirt"}, ValueType: search.TypeString, IsSearchable: true})
	doc.AddField(search.Field{Name: "Price", Values: []any{19.99}})

	result, err := c.Convert(doc, properties)
	require.NoError(t, err)

	assert.Equal(t, "Red Shirt", result["name"])
	assert.Equal(t, 19.99, result["price"])

	require.Contains(t, properties, "name")
	assert.Equal(t, PropertyText, properties["name"].Type)
	assert.Equal(t, searchableFieldAnalyzerName, properties["name"].Analyzer)

	require.Contains(t, properties, "price")
	assert.Equal(t, PropertyDouble, properties["price"].Type)
}

func TestConvert_ReusesExistingProperty(t *testing.T) {
	c := newTestConverter()
	existing := &Property{Type: PropertyKeyword}
	properties := map[string]*Property{"name": existing}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: "Name", Values: []any{"shirt"}})

	_, err := c.Convert(doc, properties)
	require.NoError(t, err)

	assert.Same(t, existing, properties["name"])
}

func TestConvert_MergesCollidingFieldNames(t *testing.T) {
	c := newTestConverter()
	properties := map[string]*Property{}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: "Color", Values: []any{"red"}})
	doc.AddField(search.Field{Name: "COLOR", Values: []any{"blue"}})

	result, err := c.Convert(doc, properties)
	require.NoError(t, err)

	assert.Equal(t, []any{"red", "blue"}, result["color"])
}

func TestConvert_CollectionStaysList(t *testing.T) {
	c := newTestConverter()
	properties := map[string]*Property{}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: "Tags", Values: []any{"summer"}, IsCollection: true})

	result, err := c.Convert(doc, properties)
	require.NoError(t, err)

	assert.Equal(t, []any{"summer"}, result["tags"])
}

func TestConvert_GeoPointRendersLatLon(t *testing.T) {
	c := newTestConverter()
	properties := map[string]*Property{}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: "Location", Values: []any{search.GeoPoint{Latitude: 51.5, Longitude: -0.12}}})

	result, err := c.Convert(doc, properties)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"lat": 51.5, "lon": -0.12}, result["location"])
	assert.Equal(t, PropertyGeoPoint, properties["location"].Type)
}

func TestConvert_ObjectFieldOmittedFromDocument(t *testing.T) {
	c := newTestConverter()
	properties := map[string]*Property{}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: objectFieldName, Values: []any{map[string]any{"raw": true}}})

	result, err := c.Convert(doc, properties)
	require.NoError(t, err)

	assert.NotContains(t, result, objectFieldName)
	assert.Contains(t, properties, objectFieldName)
}

func TestConvert_SuggestableFieldAddsCompletion(t *testing.T) {
	c := newTestConverter()
	properties := map[string]*Property{}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: "Name", Values: []any{"Blue Jeans"}, ValueType: search.TypeString, IsSuggestable: true})

	result, err := c.Convert(doc, properties)
	require.NoError(t, err)

	suggestName := suggestionFieldName("Name")
	require.Contains(t, result, suggestName)
	assert.Equal(t, map[string]any{"input": []string{"blue", "blue jeans"}}, result[suggestName])

	require.Contains(t, properties, suggestName)
	assert.Equal(t, PropertyCompletion, properties[suggestName].Type)
}

func TestConvert_SuggestableFieldWithNoTokens(t *testing.T) {
	c := newTestConverter()
	properties := map[string]*Property{}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: "Name", Values: []any{"..."}, ValueType: search.TypeString, IsSuggestable: true})

	result, err := c.Convert(doc, properties)
	require.NoError(t, err)

	assert.NotContains(t, result, suggestionFieldName("Name"))
}

func TestConvert_UnsupportedValueTypeFails(t *testing.T) {
	c := newTestConverter()
	properties := map[string]*Property{}

	doc := search.Document{ID: "1"}
	doc.AddField(search.Field{Name: "Broken", Values: []any{struct{}{}}})

	_, err := c.Convert(doc, properties)
	assert.Error(t, err)
}
