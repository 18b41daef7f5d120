package elastic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/elasticbridge/internal/search"
)

func newTestBuilder(opts Options) *requestBuilder {
	full := opts.withDefaults()
	return &requestBuilder{opts: &full}
}

// ============================================================================
// Base Query Tests
// ============================================================================

func TestBuild_NoKeywordsOmitsQuery(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{Take: 20}, "product", nil)

	assert.NotContains(t, body, "query")
	assert.Equal(t, 0, body["from"])
	assert.Equal(t, 20, body["size"])
}

func TestBuild_KeywordQuery(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{
		SearchKeywords: "red shirt",
		SearchFields:   []string{"Name", "Description"},
		Take:           20,
	}, "product", nil)

	query := body["query"].(map[string]any)
	inner := query["multi_match"].(map[string]any)
	assert.Equal(t, "red shirt", inner["query"])
	assert.Equal(t, "and", inner["operator"])
	assert.Equal(t, "standard", inner["analyzer"])
	assert.Equal(t, []string{"name", "description"}, inner["fields"])
	assert.NotContains(t, inner, "fuzziness")
}

func TestBuild_FuzzinessAuto(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{SearchKeywords: "shrit", IsFuzzySearch: true, Take: 20}, "product", nil)

	inner := body["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "AUTO", inner["fuzziness"])
}

func TestBuild_FuzzinessExplicit(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{SearchKeywords: "shrit", IsFuzzySearch: true, Fuzziness: 2, Take: 20}, "product", nil)

	inner := body["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, 2, inner["fuzziness"])
}

// ============================================================================
// Semantic Search Tests
// ============================================================================

func TestBuild_ElserCombinesKeywordAndSemantic(t *testing.T) {
	b := newTestBuilder(Options{
		SemanticSearchType: SemanticElser,
		ModelID:            ".elser_model_2",
		KeywordBoost:       2,
		SemanticBoost:      4,
	})

	body := b.Build(&search.Request{SearchKeywords: "shoes", Take: 20}, "product", nil)

	should := body["query"].(map[string]any)["bool"].(map[string]any)["should"].([]any)
	require.Len(t, should, 2)

	expansion := should[0].(map[string]any)["text_expansion"].(map[string]any)[tokensFieldName].(map[string]any)
	assert.Equal(t, ".elser_model_2", expansion["model_id"])
	assert.Equal(t, "shoes", expansion["model_text"])
	assert.Equal(t, 4.0, expansion["boost"])

	keyword := should[1].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, 2.0, keyword["boost"])

	assert.NotContains(t, body, "knn")
}

func TestBuild_ThirdPartyAddsKnnClause(t *testing.T) {
	b := newTestBuilder(Options{
		SemanticSearchType: SemanticThirdParty,
		ModelID:            "sentence-transformer",
	})

	body := b.Build(&search.Request{SearchKeywords: "shoes", Take: 20}, "product", nil)

	knn := body["knn"].([]any)
	require.Len(t, knn, 1)

	clause := knn[0].(map[string]any)
	assert.Equal(t, vectorFieldName, clause["field"])
	assert.Equal(t, 20, clause["k"])
	assert.Equal(t, 40, clause["num_candidates"])

	embedding := clause["query_vector_builder"].(map[string]any)["text_embedding"].(map[string]any)
	assert.Equal(t, "sentence-transformer", embedding["model_id"])
	assert.Equal(t, "shoes", embedding["model_text"])

	// The textual query stays a plain multi-match.
	assert.Contains(t, body["query"].(map[string]any), "multi_match")
}

func TestBuild_KnnCandidatesCapped(t *testing.T) {
	b := newTestBuilder(Options{SemanticSearchType: SemanticThirdParty})

	body := b.Build(&search.Request{SearchKeywords: "x", Take: 9000}, "product", nil)

	clause := body["knn"].([]any)[0].(map[string]any)
	assert.Equal(t, nearestNeighborMaxCandidates, clause["num_candidates"])
}

func TestBuild_NoKeywordsSkipsSemantic(t *testing.T) {
	b := newTestBuilder(Options{SemanticSearchType: SemanticThirdParty})

	body := b.Build(&search.Request{Take: 20}, "product", nil)

	assert.NotContains(t, body, "knn")
	assert.NotContains(t, body, "query")
}

// ============================================================================
// Sort, Paging and Scoring Tests
// ============================================================================

func TestBuild_FieldSort(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{
		Sorting: []search.SortingField{{FieldName: "Price", IsDescending: true}},
		Take:    20,
	}, "product", nil)

	sort := body["sort"].([]any)
	require.Len(t, sort, 1)
	assert.Equal(t, map[string]any{
		"price": map[string]any{"order": "desc", "missing": "_last", "unmapped_type": "long"},
	}, sort[0])
	assert.NotContains(t, body, "track_scores")
}

func TestBuild_ScoreSortTracksScores(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{
		Sorting: []search.SortingField{{FieldName: "score", IsDescending: true}},
		Take:    20,
	}, "product", nil)

	sort := body["sort"].([]any)
	assert.Equal(t, map[string]any{"_score": map[string]any{"order": "desc"}}, sort[0])
	assert.Equal(t, true, body["track_scores"])
}

func TestBuild_GeoSort(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{
		Sorting: []search.SortingField{{
			FieldName: "Location",
			Location:  &search.GeoPoint{Latitude: 51.5, Longitude: -0.12},
		}},
		Take: 20,
	}, "product", nil)

	sort := body["sort"].([]any)
	distance := sort[0].(map[string]any)["_geo_distance"].(map[string]any)
	assert.Equal(t, "asc", distance["order"])
	assert.Equal(t, []any{map[string]any{"lat": 51.5, "lon": -0.12}}, distance["location"])
}

func TestBuild_SingleHitTracksTotal(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{Take: 1}, "product", nil)
	assert.Equal(t, true, body["track_total_hits"])

	body = b.Build(&search.Request{Take: 2}, "product", nil)
	assert.NotContains(t, body, "track_total_hits")
}

func TestBuild_SourceIncludes(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{IncludeFields: []string{"Name", "Price"}, Take: 20}, "product", nil)

	assert.Equal(t, map[string]any{"includes": []string{"name", "price"}}, body["_source"])
}

func TestBuild_MinScoreOnlyWithKeywords(t *testing.T) {
	b := newTestBuilder(Options{MinScore: 0.5})

	body := b.Build(&search.Request{SearchKeywords: "shoes", Take: 20}, "product", nil)
	assert.Equal(t, 0.5, body["min_score"])

	body = b.Build(&search.Request{Take: 20}, "product", nil)
	assert.NotContains(t, body, "min_score")
}

func TestBuild_FilterAndAggregations(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.Build(&search.Request{
		Filter: &search.TermFilter{FieldName: "Color", Values: []string{"red"}},
		Aggregations: []search.AggregationRequest{
			&search.TermAggregation{FieldName: "Brand", Size: 5},
		},
		Take: 20,
	}, "product", nil)

	assert.Equal(t, map[string]any{
		"terms": map[string]any{"color": []any{"red"}},
	}, body["post_filter"])
	assert.Contains(t, body["aggregations"].(map[string]any), "Brand")
}

// ============================================================================
// Suggestion Request Tests
// ============================================================================

func TestBuildSuggest(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.BuildSuggest(&search.SuggestionRequest{
		Query:  "blu",
		Fields: []string{"Name"},
		Size:   5,
	})

	assert.Equal(t, false, body["_source"])

	suggest := body["suggest"].(map[string]any)
	require.Contains(t, suggest, "name")

	suggester := suggest["name"].(map[string]any)
	assert.Equal(t, "blu", suggester["prefix"])

	completion := suggester["completion"].(map[string]any)
	assert.Equal(t, suggestionFieldName("Name"), completion["field"])
	assert.Equal(t, 5, completion["size"])
	assert.Equal(t, true, completion["skip_duplicates"])
}

func TestBuildSuggest_DefaultSize(t *testing.T) {
	b := newTestBuilder(Options{})

	body := b.BuildSuggest(&search.SuggestionRequest{Query: "b", Fields: []string{"Name"}})

	completion := body["suggest"].(map[string]any)["name"].(map[string]any)["completion"].(map[string]any)
	assert.Equal(t, 10, completion["size"])
}
