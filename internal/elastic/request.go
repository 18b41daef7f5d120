package elastic

import (
	"github.com/utafrali/elasticbridge/internal/search"
)

// nearestNeighborMaxCandidates caps the kNN candidate pool.
const nearestNeighborMaxCandidates = 10000

// requestBuilder assembles the full native search request body in a single
// pass: relevance query, post-filter, aggregations, sort, paging, source
// projection, min-score and the optional semantic clauses.
type requestBuilder struct {
	opts *Options
}

// Build assembles the body for one search call.
func (b *requestBuilder) Build(req *search.Request, documentType string, fields map[string]*Property) map[string]any {
	body := make(map[string]any)

	if query := b.relevanceQuery(req); query != nil {
		body["query"] = query
	}
	if postFilter := compileFilter(req.Filter, fields); postFilter != nil {
		body["post_filter"] = postFilter
	}
	if aggregations := compileAggregations(req.Aggregations, fields); aggregations != nil {
		body["aggregations"] = aggregations
	}
	if len(req.Sorting) > 0 {
		body["sort"] = sortOptions(req.Sorting)
		if sortsByScore(req.Sorting) {
			// Engines skip score computation once an explicit sort is set.
			body["track_scores"] = true
		}
	}

	body["from"] = req.Skip
	body["size"] = req.Take
	if req.Take == 1 {
		// The caller likely wants a precise total (existence checks), so
		// disable the approximate-count optimization.
		body["track_total_hits"] = true
	}

	if len(req.IncludeFields) > 0 {
		includes := make([]string, 0, len(req.IncludeFields))
		for _, f := range req.IncludeFields {
			includes = append(includes, toElasticFieldName(f))
		}
		body["_source"] = map[string]any{"includes": includes}
	}

	if req.SearchKeywords != "" {
		if minScore := b.opts.minScoreFor(documentType); minScore > 0 {
			body["min_score"] = minScore
		}
		if b.opts.SemanticSearchType == SemanticThirdParty {
			body["knn"] = []any{b.knnClause(req)}
		}
	}

	return body
}

// relevanceQuery builds the base query. Without keywords the query is
// omitted (match-all is implicit). With ELSER semantic search enabled, the
// keyword and sparse-vector clauses are OR-combined so either contributes to
// the score, each carrying its configured boost.
func (b *requestBuilder) relevanceQuery(req *search.Request) map[string]any {
	if req.SearchKeywords == "" {
		return nil
	}

	keyword := b.multiMatchQuery(req)

	if b.opts.SemanticSearchType != SemanticElser {
		return keyword
	}

	return map[string]any{
		"bool": map[string]any{
			"should": []any{b.textExpansionQuery(req), keyword},
		},
	}
}

func (b *requestBuilder) multiMatchQuery(req *search.Request) map[string]any {
	inner := map[string]any{
		"query":    req.SearchKeywords,
		"analyzer": "standard",
		"operator": "and",
	}

	if len(req.SearchFields) > 0 {
		fields := make([]string, 0, len(req.SearchFields))
		for _, f := range req.SearchFields {
			fields = append(fields, toElasticFieldName(f))
		}
		inner["fields"] = fields
	}

	if req.IsFuzzySearch {
		if req.Fuzziness > 0 {
			inner["fuzziness"] = req.Fuzziness
		} else {
			inner["fuzziness"] = "AUTO"
		}
	}

	if b.opts.SemanticSearchType == SemanticElser && b.opts.KeywordBoost > 0 {
		inner["boost"] = b.opts.KeywordBoost
	}

	return map[string]any{"multi_match": inner}
}

// textExpansionQuery builds the sparse-vector relevance clause against the
// dedicated tokens field.
func (b *requestBuilder) textExpansionQuery(req *search.Request) map[string]any {
	inner := map[string]any{
		"model_id":   b.opts.ModelID,
		"model_text": req.SearchKeywords,
	}
	if b.opts.SemanticBoost > 0 {
		inner["boost"] = b.opts.SemanticBoost
	}
	return map[string]any{
		"text_expansion": map[string]any{tokensFieldName: inner},
	}
}

// knnClause builds the k-nearest-neighbor clause against the dense-vector
// field, embedding the search text at query time via the configured model.
func (b *requestBuilder) knnClause(req *search.Request) map[string]any {
	numCandidates := req.Take * 2
	if numCandidates > nearestNeighborMaxCandidates {
		numCandidates = nearestNeighborMaxCandidates
	}

	clause := map[string]any{
		"field":          vectorFieldName,
		"k":              req.Take,
		"num_candidates": numCandidates,
		"query_vector_builder": map[string]any{
			"text_embedding": map[string]any{
				"model_id":   b.opts.ModelID,
				"model_text": req.SearchKeywords,
			},
		},
	}
	if b.opts.SemanticBoost > 0 {
		clause["boost"] = b.opts.SemanticBoost
	}
	return clause
}

// sortOptions compiles the requested sort entries. Geo fields sort by
// distance, the score pseudo-field sorts by _score, and any other field
// sorts with missing values last and an unmapped-type fallback of long so
// sorting by a field absent on some documents never errors.
func sortOptions(sorting []search.SortingField) []any {
	result := make([]any, 0, len(sorting))

	for _, field := range sorting {
		order := "asc"
		if field.IsDescending {
			order = "desc"
		}

		switch {
		case field.Location != nil:
			result = append(result, map[string]any{
				"_geo_distance": map[string]any{
					toElasticFieldName(field.FieldName): []any{
						map[string]any{"lat": field.Location.Latitude, "lon": field.Location.Longitude},
					},
					"order": order,
				},
			})
		case isScoreField(field.FieldName):
			result = append(result, map[string]any{
				"_score": map[string]any{"order": order},
			})
		default:
			result = append(result, map[string]any{
				toElasticFieldName(field.FieldName): map[string]any{
					"order":         order,
					"missing":       "_last",
					"unmapped_type": "long",
				},
			})
		}
	}

	return result
}

func sortsByScore(sorting []search.SortingField) bool {
	for _, field := range sorting {
		if field.Location == nil && isScoreField(field.FieldName) {
			return true
		}
	}
	return false
}

func isScoreField(name string) bool {
	return toElasticFieldName(name) == search.ScoreFieldName
}

// BuildSuggest assembles a completion-suggester request body: one suggester
// per requested field, keyed by the field name, targeting its companion
// completion field. Source is suppressed since only suggestion texts are
// decoded.
func (b *requestBuilder) BuildSuggest(req *search.SuggestionRequest) map[string]any {
	suggest := make(map[string]any, len(req.Fields))

	size := req.Size
	if size <= 0 {
		size = 10
	}

	for _, field := range req.Fields {
		suggest[toElasticFieldName(field)] = map[string]any{
			"prefix": req.Query,
			"completion": map[string]any{
				"field":           suggestionFieldName(field),
				"size":            size,
				"skip_duplicates": true,
			},
		}
	}

	return map[string]any{
		"suggest": suggest,
		"_source": false,
	}
}
