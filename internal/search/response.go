package search

// ResultDocument is one decoded hit. Fields hold the returned source values
// flattened to native scalars and slices; Score is the engine's relevance
// score when computed.
type ResultDocument struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields,omitempty"`
	Score  *float64       `json:"score,omitempty"`
}

// AggregationResponseValue is one decoded facet bucket.
type AggregationResponseValue struct {
	ID    string `json:"id"`
	Count int64  `json:"count"`
}

// AggregationStatistics carries the min/max of a range aggregation's field
// over its base filter.
type AggregationStatistics struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// AggregationResponse is one decoded aggregation. Aggregations that decode
// to zero values are omitted from the result list entirely.
type AggregationResponse struct {
	ID         string                     `json:"id"`
	Values     []AggregationResponseValue `json:"values"`
	Statistics *AggregationStatistics     `json:"statistics,omitempty"`
}

// Response is the abstract result of a search call.
type Response struct {
	TotalCount   int64                 `json:"totalCount"`
	Documents    []ResultDocument      `json:"documents"`
	Aggregations []AggregationResponse `json:"aggregations,omitempty"`
}

// SuggestionResponse is the decoded union of completion suggestions,
// deduplicated case-insensitively across the requested fields.
type SuggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// IndexingResultItem reports the outcome of indexing or removing one
// document. Partial failures are surfaced here, never as errors.
type IndexingResultItem struct {
	ID           string `json:"id"`
	Succeeded    bool   `json:"succeeded"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// IndexingResult is the per-item outcome of a bulk index or remove call.
type IndexingResult struct {
	Items []IndexingResultItem `json:"items"`
}
