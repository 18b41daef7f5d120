package elastic

import (
	"encoding/json"
	"strings"

	"github.com/utafrali/elasticbridge/internal/search"
)

type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []esSearchHit `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage  `json:"aggregations"`
	Suggest      map[string][]esSuggestGroup `json:"suggest"`
}

type esSearchHit struct {
	ID     string         `json:"_id"`
	Score  *float64       `json:"_score"`
	Source map[string]any `json:"_source"`
}

type esSuggestGroup struct {
	Text    string `json:"text"`
	Options []struct {
		Text string `json:"text"`
	} `json:"options"`
}

// buildResponse maps a raw engine response back to the abstract result,
// pairing each decoded aggregate with the aggregation request that produced
// it.
func buildResponse(raw *esSearchResponse, requests []search.AggregationRequest) *search.Response {
	resp := &search.Response{
		TotalCount: raw.Hits.Total.Value,
		Documents:  make([]search.ResultDocument, 0, len(raw.Hits.Hits)),
	}

	for _, hit := range raw.Hits.Hits {
		resp.Documents = append(resp.Documents, search.ResultDocument{
			ID:     hit.ID,
			Fields: hit.Source,
			Score:  hit.Score,
		})
	}

	resp.Aggregations = decodeAggregations(raw.Aggregations, requests)

	return resp
}

// decodeAggregations resolves each requested aggregation against the raw
// aggregate map. Aggregations whose every bucket came back empty are omitted
// from the result.
func decodeAggregations(raw map[string]json.RawMessage, requests []search.AggregationRequest) []search.AggregationResponse {
	if len(raw) == 0 || len(requests) == 0 {
		return nil
	}

	var result []search.AggregationResponse

	for _, request := range requests {
		var decoded *search.AggregationResponse

		switch agg := request.(type) {
		case *search.TermAggregation:
			decoded = decodeTermAggregation(raw, agg)
		case *search.RangeAggregation:
			decoded = decodeRangeAggregation(raw, agg)
		}

		if decoded != nil && (len(decoded.Values) > 0 || decoded.Statistics != nil) {
			result = append(result, *decoded)
		}
	}

	return result
}

func decodeTermAggregation(raw map[string]json.RawMessage, request *search.TermAggregation) *search.AggregationResponse {
	id := request.BucketID()

	aggregate := decodeAggregate(raw, id)
	if aggregate == nil {
		return nil
	}

	response := &search.AggregationResponse{ID: id}

	for _, bucket := range termBuckets(aggregate, id) {
		if bucket.Count > 0 {
			response.Values = append(response.Values, search.AggregationResponseValue{
				ID:    bucket.Key,
				Count: bucket.Count,
			})
		}
	}

	return response
}

func decodeRangeAggregation(raw map[string]json.RawMessage, request *search.RangeAggregation) *search.AggregationResponse {
	id := request.BucketID()
	response := &search.AggregationResponse{ID: id}

	for _, value := range request.Values {
		aggregate := decodeAggregate(raw, id+"-"+value.ID)
		if aggregate == nil {
			continue
		}
		for _, bucket := range anonymousBuckets(aggregate) {
			count := bucketDocCount(bucket)
			if count > 0 {
				response.Values = append(response.Values, search.AggregationResponseValue{
					ID:    value.ID,
					Count: count,
				})
			}
		}
	}

	if stats := decodeAggregate(raw, id+"-stats"); stats != nil {
		response.Statistics = decodeStatistics(stats)
	}

	return response
}

func decodeAggregate(raw map[string]json.RawMessage, key string) map[string]any {
	data, ok := raw[key]
	if !ok {
		return nil
	}
	var aggregate map[string]any
	if err := json.Unmarshal(data, &aggregate); err != nil {
		return nil
	}
	return aggregate
}

type termBucket struct {
	Key   string
	Count int64
}

// termBuckets extracts keyed term buckets, drilling through a single-bucket
// filters wrapper that nests the actual terms aggregate under the same id.
func termBuckets(aggregate map[string]any, id string) []termBucket {
	var result []termBucket

	for _, bucket := range anonymousBuckets(aggregate) {
		if nested, ok := bucket[id].(map[string]any); ok {
			result = append(result, termBuckets(nested, id)...)
			continue
		}
		key, hasKey := bucket["key"]
		count := bucketDocCount(bucket)
		if hasKey {
			result = append(result, termBucket{Key: bucketKeyString(key, bucket), Count: count})
		} else if count > 0 {
			result = append(result, termBucket{Key: id, Count: count})
		}
	}

	return result
}

// anonymousBuckets returns the bucket list of a terms or filters aggregate.
// A filter (single-bucket) aggregate is treated as one bucket.
func anonymousBuckets(aggregate map[string]any) []map[string]any {
	buckets, ok := aggregate["buckets"]
	if !ok {
		if _, hasCount := aggregate["doc_count"]; hasCount {
			return []map[string]any{aggregate}
		}
		return nil
	}

	list, ok := buckets.([]any)
	if !ok {
		return nil
	}

	result := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if bucket, ok := item.(map[string]any); ok {
			result = append(result, bucket)
		}
	}
	return result
}

func bucketDocCount(bucket map[string]any) int64 {
	count, ok := bucket["doc_count"].(float64)
	if !ok {
		return 0
	}
	return int64(count)
}

// bucketKeyString prefers the engine-formatted key when present, since
// numeric and date keys decode as float64 otherwise.
func bucketKeyString(key any, bucket map[string]any) string {
	if formatted, ok := bucket["key_as_string"].(string); ok {
		return formatted
	}
	if s, ok := key.(string); ok {
		return s
	}
	data, err := json.Marshal(key)
	if err != nil {
		return ""
	}
	return string(data)
}

// decodeStatistics unwraps the filter aggregate around the stats sub-aggregate
// and pulls min and max. Absent values (empty filter bucket) stay nil.
func decodeStatistics(aggregate map[string]any) *search.AggregationStatistics {
	stats, ok := aggregate["stats"].(map[string]any)
	if !ok {
		return nil
	}

	result := &search.AggregationStatistics{}
	if min, ok := stats["min"].(float64); ok {
		result.Min = &min
	}
	if max, ok := stats["max"].(float64); ok {
		result.Max = &max
	}
	if result.Min == nil && result.Max == nil {
		return nil
	}
	return result
}

// buildSuggestions unions the option texts of the requested fields'
// suggesters in request order, deduplicating case-insensitively while
// preserving first-seen order.
func buildSuggestions(raw *esSearchResponse, fields []string) *search.SuggestionResponse {
	response := &search.SuggestionResponse{}
	seen := make(map[string]struct{})

	for _, field := range fields {
		groups, ok := raw.Suggest[toElasticFieldName(field)]
		if !ok {
			continue
		}
		for _, group := range groups {
			for _, option := range group.Options {
				key := strings.ToLower(option.Text)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				response.Suggestions = append(response.Suggestions, option.Text)
			}
		}
	}

	return response
}
