package search

// ScoreFieldName is the pseudo sort field denoting relevance-score order.
const ScoreFieldName = "score"

// SortingField is one requested sort entry. When Location is set the entry
// compiles to a geo-distance sort; when FieldName equals ScoreFieldName it
// compiles to score order.
type SortingField struct {
	FieldName    string
	IsDescending bool
	Location     *GeoPoint
}

// Request describes one search call against a document type.
type Request struct {
	// SearchKeywords is the free-text query; empty means match-all.
	SearchKeywords string
	// SearchFields restricts the fields the keyword query runs over.
	// Empty means all fields.
	SearchFields []string
	// IsFuzzySearch enables fuzzy keyword matching; Fuzziness is the edit
	// distance, zero meaning the engine's automatic choice.
	IsFuzzySearch bool
	Fuzziness     int

	// Filter is applied as a post-filter so aggregation counts reflect the
	// pre-filter result set.
	Filter Filter

	Aggregations []AggregationRequest
	Sorting      []SortingField

	Skip int
	Take int

	// IncludeFields restricts the returned source fields.
	IncludeFields []string

	// UseBackupIndex targets the previous index generation.
	UseBackupIndex bool
}

// SuggestionRequest asks for type-ahead completions of Query over the
// completion sub-fields of the given document fields.
type SuggestionRequest struct {
	Query          string
	Fields         []string
	Size           int
	UseBackupIndex bool
}
