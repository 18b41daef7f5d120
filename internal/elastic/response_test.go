package elastic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/elasticbridge/internal/search"
)

func decodeSearchResponse(t *testing.T, body string) *esSearchResponse {
	t.Helper()
	var raw esSearchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return &raw
}

func TestBuildResponse_Documents(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"took": 3,
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_id": "1", "_score": 1.5, "_source": {"name": "red shirt"}},
				{"_id": "2", "_score": null, "_source": {"name": "blue shirt"}}
			]
		}
	}`)

	resp := buildResponse(raw, nil)

	assert.Equal(t, int64(2), resp.TotalCount)
	require.Len(t, resp.Documents, 2)

	assert.Equal(t, "1", resp.Documents[0].ID)
	require.NotNil(t, resp.Documents[0].Score)
	assert.Equal(t, 1.5, *resp.Documents[0].Score)
	assert.Equal(t, map[string]any{"name": "red shirt"}, resp.Documents[0].Fields)

	assert.Nil(t, resp.Documents[1].Score)
}

func TestBuildResponse_PlainTermsAggregation(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"hits": {"total": {"value": 0}, "hits": []},
		"aggregations": {
			"brand": {"buckets": [
				{"key": "acme", "doc_count": 7},
				{"key": "contoso", "doc_count": 0}
			]}
		}
	}`)

	resp := buildResponse(raw, []search.AggregationRequest{
		&search.TermAggregation{FieldName: "brand"},
	})

	require.Len(t, resp.Aggregations, 1)
	agg := resp.Aggregations[0]
	assert.Equal(t, "brand", agg.ID)
	assert.Equal(t, []search.AggregationResponseValue{{ID: "acme", Count: 7}}, agg.Values)
}

// A filtered facet decodes to the same values as an unfiltered one: the
// wrapper bucket keyed by the aggregation id is transparent.
func TestBuildResponse_FilteredTermsUnwrapped(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"hits": {"total": {"value": 0}, "hits": []},
		"aggregations": {
			"brand": {"buckets": [
				{
					"doc_count": 7,
					"brand": {"buckets": [
						{"key": "acme", "doc_count": 5},
						{"key": "contoso", "doc_count": 2}
					]}
				}
			]}
		}
	}`)

	resp := buildResponse(raw, []search.AggregationRequest{
		&search.TermAggregation{ID: "brand", FieldName: "brand"},
	})

	require.Len(t, resp.Aggregations, 1)
	assert.Equal(t, []search.AggregationResponseValue{
		{ID: "acme", Count: 5},
		{ID: "contoso", Count: 2},
	}, resp.Aggregations[0].Values)
}

func TestBuildResponse_NumericBucketKeysUseFormattedForm(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"hits": {"total": {"value": 0}, "hits": []},
		"aggregations": {
			"size": {"buckets": [
				{"key": 42, "key_as_string": "42", "doc_count": 3}
			]}
		}
	}`)

	resp := buildResponse(raw, []search.AggregationRequest{
		&search.TermAggregation{FieldName: "size"},
	})

	require.Len(t, resp.Aggregations, 1)
	assert.Equal(t, "42", resp.Aggregations[0].Values[0].ID)
}

func TestBuildResponse_EmptyAggregationOmitted(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"hits": {"total": {"value": 0}, "hits": []},
		"aggregations": {
			"brand": {"buckets": [{"key": "acme", "doc_count": 0}]}
		}
	}`)

	resp := buildResponse(raw, []search.AggregationRequest{
		&search.TermAggregation{FieldName: "brand"},
	})

	assert.Empty(t, resp.Aggregations)
}

func TestBuildResponse_RangeAggregation(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"hits": {"total": {"value": 0}, "hits": []},
		"aggregations": {
			"price-under-10": {"buckets": [{"doc_count": 5}]},
			"price-10-to-50": {"buckets": [{"doc_count": 15}]},
			"price-over-50": {"buckets": [{"doc_count": 0}]},
			"price-stats": {
				"doc_count": 20,
				"stats": {"count": 20, "min": 5.0, "max": 10.0, "avg": 7.0, "sum": 140.0}
			}
		}
	}`)

	resp := buildResponse(raw, []search.AggregationRequest{
		&search.RangeAggregation{
			ID:        "price",
			FieldName: "price",
			Values: []search.RangeAggregationValue{
				{ID: "under-10", Upper: "10"},
				{ID: "10-to-50", Lower: "10", Upper: "50"},
				{ID: "over-50", Lower: "50"},
			},
		},
	})

	require.Len(t, resp.Aggregations, 1)
	agg := resp.Aggregations[0]

	assert.Equal(t, "price", agg.ID)
	assert.Equal(t, []search.AggregationResponseValue{
		{ID: "under-10", Count: 5},
		{ID: "10-to-50", Count: 15},
	}, agg.Values)

	require.NotNil(t, agg.Statistics)
	require.NotNil(t, agg.Statistics.Min)
	require.NotNil(t, agg.Statistics.Max)
	assert.Equal(t, 5.0, *agg.Statistics.Min)
	assert.Equal(t, 10.0, *agg.Statistics.Max)
}

func TestBuildResponse_RangeStatsWithNullBounds(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"hits": {"total": {"value": 0}, "hits": []},
		"aggregations": {
			"price-stats": {
				"doc_count": 0,
				"stats": {"count": 0, "min": null, "max": null}
			}
		}
	}`)

	resp := buildResponse(raw, []search.AggregationRequest{
		&search.RangeAggregation{
			ID:        "price",
			FieldName: "price",
			Values:    []search.RangeAggregationValue{{ID: "cheap", Upper: "10"}},
		},
	})

	assert.Empty(t, resp.Aggregations)
}

func TestBuildSuggestions_DedupesCaseInsensitively(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"hits": {"total": {"value": 0}, "hits": []},
		"suggest": {
			"name": [{
				"text": "blu",
				"options": [
					{"text": "Blue"},
					{"text": "blue"},
					{"text": "blue jeans"}
				]
			}]
		}
	}`)

	resp := buildSuggestions(raw, []string{"name"})
	assert.Equal(t, []string{"Blue", "blue jeans"}, resp.Suggestions)
}

func TestBuildSuggestions_FieldOrderIsStable(t *testing.T) {
	raw := decodeSearchResponse(t, `{
		"hits": {"total": {"value": 0}, "hits": []},
		"suggest": {
			"name": [{"text": "a", "options": [{"text": "alpha"}]}],
			"brand": [{"text": "a", "options": [{"text": "beta"}]}],
			"category": [{"text": "a", "options": [{"text": "gamma"}]}]
		}
	}`)

	fields := []string{"Name", "Brand", "Category"}
	want := []string{"alpha", "beta", "gamma"}

	for i := 0; i < 50; i++ {
		resp := buildSuggestions(raw, fields)
		require.Equal(t, want, resp.Suggestions)
	}
}

func TestBuildSuggestions_Empty(t *testing.T) {
	raw := decodeSearchResponse(t, `{"hits": {"total": {"value": 0}, "hits": []}}`)
	resp := buildSuggestions(raw, []string{"name"})
	assert.Empty(t, resp.Suggestions)
}
