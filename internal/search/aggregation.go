package search

// AggregationRequest is a facet computation request. The variant set is
// closed: TermAggregation and RangeAggregation.
type AggregationRequest interface {
	isAggregationRequest()

	// BucketID returns the id used as the native bucket key, defaulting to
	// the field name. Compiling and decoding must use identical keys.
	BucketID() string
}

// TermAggregation requests one bucket per distinct field value.
type TermAggregation struct {
	// ID keys the native bucket; FieldName is used when empty.
	ID        string
	FieldName string
	// Filter restricts the documents the buckets are computed over.
	Filter Filter
	// Size caps the number of returned buckets; zero or negative means
	// unbounded (mapped to the engine's maximum bucket count).
	Size int
	// Values, when non-empty, is an allow-list of bucket keys.
	Values []string
}

// RangeAggregationValue is one named sub-range of a range aggregation.
type RangeAggregationValue struct {
	ID           string
	Lower        string
	Upper        string
	IncludeLower bool
	IncludeUpper bool
}

// RangeAggregation requests one count bucket per named sub-range plus a
// shared min/max statistics bucket over the base filter alone.
type RangeAggregation struct {
	ID        string
	FieldName string
	Filter    Filter
	Values    []RangeAggregationValue
}

func (*TermAggregation) isAggregationRequest()  {}
func (*RangeAggregation) isAggregationRequest() {}

// BucketID implements AggregationRequest.
func (a *TermAggregation) BucketID() string {
	if a.ID != "" {
		return a.ID
	}
	return a.FieldName
}

// BucketID implements AggregationRequest.
func (a *RangeAggregation) BucketID() string {
	if a.ID != "" {
		return a.ID
	}
	return a.FieldName
}
