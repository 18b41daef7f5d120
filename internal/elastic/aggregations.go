package elastic

import (
	"math"

	"github.com/utafrali/elasticbridge/internal/search"
)

// unboundedFacetSize is the size sentinel a non-positive term aggregation
// size maps to: the engine's maximum bucket count.
const unboundedFacetSize = math.MaxInt32

// compileAggregations compiles aggregation requests into native bucket
// aggregations, reusing the filter compiler for base filters. An aggregation
// with no resolvable field and no filter yields no entry.
func compileAggregations(requests []search.AggregationRequest, fields map[string]*Property) map[string]any {
	if len(requests) == 0 {
		return nil
	}

	result := make(map[string]any, len(requests))

	for _, request := range requests {
		switch agg := request.(type) {
		case *search.TermAggregation:
			compileTermAggregation(result, agg, fields)
		case *search.RangeAggregation:
			compileRangeAggregation(result, agg, fields)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// aggregationField resolves the native field the buckets target. Keyword
// properties exposing a raw sub-field are faceted on field.raw so bucket
// keys bypass the field's normalizer.
func aggregationField(fieldName string, fields map[string]*Property) string {
	if fieldName == "" {
		return ""
	}
	native := toElasticFieldName(fieldName)
	if fields[native].hasRawSubField() {
		return native + "." + rawSubFieldName
	}
	return native
}

// compileTermAggregation adds a terms bucket for the request. When the
// request carries a base filter, the terms bucket is nested inside a
// single-bucket filters aggregation keyed by the same id (filtered facet
// pattern), so decoding can unwrap it by key.
func compileTermAggregation(container map[string]any, agg *search.TermAggregation, fields map[string]*Property) {
	id := agg.BucketID()
	field := aggregationField(agg.FieldName, fields)
	filter := compileFilter(agg.Filter, fields)

	var terms map[string]any
	if field != "" {
		size := agg.Size
		if size <= 0 {
			size = unboundedFacetSize
		}
		inner := map[string]any{
			"field": field,
			"size":  size,
		}
		if len(agg.Values) > 0 {
			inner["include"] = agg.Values
		}
		terms = map[string]any{"terms": inner}
	}

	switch {
	case filter == nil && terms != nil:
		container[id] = terms
	case filter != nil && terms != nil:
		container[id] = map[string]any{
			"filters":      map[string]any{"filters": []any{filter}},
			"aggregations": map[string]any{id: terms},
		}
	case filter != nil:
		container[id] = map[string]any{
			"filters": map[string]any{"filters": []any{filter}},
		}
	}
}

// compileRangeAggregation adds one filters bucket per named sub-range, keyed
// "{id}-{valueId}" and combining the base filter with that sub-range's
// bounds, plus one "{id}-stats" bucket computing min/max over the base
// filter alone.
func compileRangeAggregation(container map[string]any, agg *search.RangeAggregation, fields map[string]*Property) {
	if len(agg.Values) == 0 {
		return
	}

	id := agg.BucketID()
	field := aggregationField(agg.FieldName, fields)
	filter := compileFilter(agg.Filter, fields)

	for _, value := range agg.Values {
		rangeQuery := compileFilter(&search.RangeFilter{
			FieldName: field,
			Values: []search.RangeValue{{
				Lower:        value.Lower,
				Upper:        value.Upper,
				IncludeLower: value.IncludeLower,
				IncludeUpper: value.IncludeUpper,
			}},
		}, fields)

		bucket := andQueries(filter, rangeQuery)
		if bucket == nil {
			bucket = map[string]any{"match_all": map[string]any{}}
		}

		container[id+"-"+value.ID] = map[string]any{
			"filters": map[string]any{"filters": []any{bucket}},
		}
	}

	statsFilter := filter
	if statsFilter == nil {
		statsFilter = map[string]any{"match_all": map[string]any{}}
	}
	container[id+"-stats"] = map[string]any{
		"filter": statsFilter,
		"aggregations": map[string]any{
			"stats": map[string]any{
				"stats": map[string]any{"field": field},
			},
		},
	}
}
