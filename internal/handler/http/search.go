package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/elasticbridge/internal/search"
	"github.com/utafrali/elasticbridge/internal/service"
	"github.com/utafrali/elasticbridge/pkg/httputil"
	"github.com/utafrali/elasticbridge/pkg/validator"
)

// SearchHandler handles HTTP requests for search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SearchRequest is the JSON request body for a search query.
type SearchRequest struct {
	Keywords      string        `json:"keywords"`
	SearchFields  []string      `json:"search_fields"`
	Fuzzy         bool          `json:"fuzzy"`
	Fuzziness     int           `json:"fuzziness" validate:"gte=0,lte=2"`
	Filter        *FilterNode   `json:"filter"`
	Aggregations  []Aggregation `json:"aggregations" validate:"dive"`
	Sort          []SortField   `json:"sort" validate:"dive"`
	Skip          int           `json:"skip" validate:"gte=0"`
	Take          int           `json:"take" validate:"gte=0,lte=1000"`
	IncludeFields []string      `json:"include_fields"`
	UseBackup     bool          `json:"use_backup"`
}

// FilterNode is one node of the JSON filter expression tree.
type FilterNode struct {
	Type      string        `json:"type" validate:"required,oneof=ids term range geo_distance wildcard not and or"`
	FieldName string        `json:"field_name"`
	Values    []string      `json:"values"`
	Ranges    []RangeWindow `json:"ranges" validate:"dive"`
	Value     string        `json:"value"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Distance  float64       `json:"distance"`
	Child     *FilterNode   `json:"child"`
	Children  []*FilterNode `json:"children"`
}

// RangeWindow is one bound pair of a range filter or aggregation.
type RangeWindow struct {
	ID           string `json:"id"`
	Lower        string `json:"lower"`
	Upper        string `json:"upper"`
	IncludeLower bool   `json:"include_lower"`
	IncludeUpper bool   `json:"include_upper"`
}

// Aggregation is one requested facet.
type Aggregation struct {
	Type      string        `json:"type" validate:"required,oneof=term range"`
	ID        string        `json:"id"`
	FieldName string        `json:"field_name" validate:"required"`
	Filter    *FilterNode   `json:"filter"`
	Size      int           `json:"size" validate:"gte=0"`
	Values    []string      `json:"values"`
	Ranges    []RangeWindow `json:"ranges" validate:"dive"`
}

// SortField is one requested sort entry.
type SortField struct {
	FieldName  string   `json:"field_name" validate:"required"`
	Descending bool     `json:"descending"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// SuggestRequest is the JSON request body for a type-ahead query.
type SuggestRequest struct {
	Query     string   `json:"query" validate:"required"`
	Fields    []string `json:"fields" validate:"required,min=1"`
	Size      int      `json:"size" validate:"gte=0,lte=100"`
	UseBackup bool     `json:"use_backup"`
}

// DocumentField is one field of a document in the indexing API.
type DocumentField struct {
	Name          string `json:"name" validate:"required"`
	Values        []any  `json:"values"`
	ValueType     string `json:"value_type"`
	IsFilterable  bool   `json:"is_filterable"`
	IsSearchable  bool   `json:"is_searchable"`
	IsRetrievable bool   `json:"is_retrievable"`
	IsSuggestable bool   `json:"is_suggestable"`
	IsCollection  bool   `json:"is_collection"`
}

// IndexDocument is one document in the indexing API.
type IndexDocument struct {
	ID     string          `json:"id" validate:"required"`
	Fields []DocumentField `json:"fields" validate:"required,min=1,dive"`
}

// IndexDocumentsRequest is the JSON request body for (re)indexing documents.
type IndexDocumentsRequest struct {
	Documents []IndexDocument `json:"documents" validate:"required,min=1,max=500,dive"`
}

// RemoveDocumentsRequest is the JSON request body for removing documents.
type RemoveDocumentsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500"`
}

// CreateIndexRequest is the JSON request body for creating an index from a
// schema document.
type CreateIndexRequest struct {
	Schema IndexDocument `json:"schema" validate:"required"`
}

// --- DTO conversion ---

func (f *FilterNode) toFilter() (search.Filter, error) {
	if f == nil {
		return nil, nil
	}

	switch f.Type {
	case "ids":
		return &search.IDsFilter{Values: f.Values}, nil
	case "term":
		if f.FieldName == "" {
			return nil, fmt.Errorf("term filter requires field_name")
		}
		return &search.TermFilter{FieldName: f.FieldName, Values: f.Values}, nil
	case "range":
		if f.FieldName == "" {
			return nil, fmt.Errorf("range filter requires field_name")
		}
		values := make([]search.RangeValue, 0, len(f.Ranges))
		for _, r := range f.Ranges {
			values = append(values, search.RangeValue{
				Lower:        r.Lower,
				Upper:        r.Upper,
				IncludeLower: r.IncludeLower,
				IncludeUpper: r.IncludeUpper,
			})
		}
		return &search.RangeFilter{FieldName: f.FieldName, Values: values}, nil
	case "geo_distance":
		if f.FieldName == "" {
			return nil, fmt.Errorf("geo_distance filter requires field_name")
		}
		return &search.GeoDistanceFilter{
			FieldName: f.FieldName,
			Location:  search.GeoPoint{Latitude: f.Latitude, Longitude: f.Longitude},
			Distance:  f.Distance,
		}, nil
	case "wildcard":
		if f.FieldName == "" {
			return nil, fmt.Errorf("wildcard filter requires field_name")
		}
		return &search.WildcardFilter{FieldName: f.FieldName, Value: f.Value}, nil
	case "not":
		child, err := f.Child.toFilter()
		if err != nil {
			return nil, err
		}
		return &search.NotFilter{Child: child}, nil
	case "and", "or":
		children := make([]search.Filter, 0, len(f.Children))
		for _, c := range f.Children {
			child, err := c.toFilter()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if f.Type == "and" {
			return &search.AndFilter{Children: children}, nil
		}
		return &search.OrFilter{Children: children}, nil
	default:
		return nil, fmt.Errorf("unknown filter type %q", f.Type)
	}
}

func (a *Aggregation) toAggregation() (search.AggregationRequest, error) {
	filter, err := a.Filter.toFilter()
	if err != nil {
		return nil, err
	}

	switch a.Type {
	case "term":
		return &search.TermAggregation{
			ID:        a.ID,
			FieldName: a.FieldName,
			Filter:    filter,
			Size:      a.Size,
			Values:    a.Values,
		}, nil
	case "range":
		if len(a.Ranges) == 0 {
			return nil, fmt.Errorf("range aggregation requires at least one range")
		}
		values := make([]search.RangeAggregationValue, 0, len(a.Ranges))
		for _, r := range a.Ranges {
			values = append(values, search.RangeAggregationValue{
				ID:           r.ID,
				Lower:        r.Lower,
				Upper:        r.Upper,
				IncludeLower: r.IncludeLower,
				IncludeUpper: r.IncludeUpper,
			})
		}
		return &search.RangeAggregation{
			ID:        a.ID,
			FieldName: a.FieldName,
			Filter:    filter,
			Values:    values,
		}, nil
	default:
		return nil, fmt.Errorf("unknown aggregation type %q", a.Type)
	}
}

func (r *SearchRequest) toRequest() (*search.Request, error) {
	filter, err := r.Filter.toFilter()
	if err != nil {
		return nil, err
	}

	aggregations := make([]search.AggregationRequest, 0, len(r.Aggregations))
	for i := range r.Aggregations {
		agg, err := r.Aggregations[i].toAggregation()
		if err != nil {
			return nil, err
		}
		aggregations = append(aggregations, agg)
	}

	sorting := make([]search.SortingField, 0, len(r.Sort))
	for _, s := range r.Sort {
		field := search.SortingField{
			FieldName:    s.FieldName,
			IsDescending: s.Descending,
		}
		if s.Latitude != nil && s.Longitude != nil {
			field.Location = &search.GeoPoint{Latitude: *s.Latitude, Longitude: *s.Longitude}
		}
		sorting = append(sorting, field)
	}

	return &search.Request{
		SearchKeywords: strings.TrimSpace(r.Keywords),
		SearchFields:   r.SearchFields,
		IsFuzzySearch:  r.Fuzzy,
		Fuzziness:      r.Fuzziness,
		Filter:         filter,
		Aggregations:   aggregations,
		Sorting:        sorting,
		Skip:           r.Skip,
		Take:           r.Take,
		IncludeFields:  r.IncludeFields,
		UseBackupIndex: r.UseBackup,
	}, nil
}

func (d *IndexDocument) toDocument() search.Document {
	doc := search.Document{ID: d.ID}
	for _, f := range d.Fields {
		doc.AddField(search.Field{
			Name:          f.Name,
			Values:        f.Values,
			ValueType:     search.ValueType(f.ValueType),
			IsFilterable:  f.IsFilterable,
			IsSearchable:  f.IsSearchable,
			IsRetrievable: f.IsRetrievable,
			IsSuggestable: f.IsSuggestable,
			IsCollection:  f.IsCollection,
		})
	}
	return doc
}

func toDocuments(dtos []IndexDocument) []search.Document {
	documents := make([]search.Document, 0, len(dtos))
	for i := range dtos {
		documents = append(documents, dtos[i].toDocument())
	}
	return documents
}

// --- Handlers ---

// Search handles POST /api/v1/search/{documentType}/query
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	documentType := chi.URLParam(r, "documentType")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	request, err := req.toRequest()
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: err.Error()},
		})
		return
	}

	result, err := h.service.Search(r.Context(), documentType, request)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Suggest handles POST /api/v1/search/{documentType}/suggest
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	documentType := chi.URLParam(r, "documentType")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Suggest(r.Context(), documentType, &search.SuggestionRequest{
		Query:          strings.TrimSpace(req.Query),
		Fields:         req.Fields,
		Size:           req.Size,
		UseBackupIndex: req.UseBackup,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// IndexDocuments handles POST /api/v1/search/{documentType}/documents
func (h *SearchHandler) IndexDocuments(w http.ResponseWriter, r *http.Request) {
	h.indexDocuments(w, r, h.service.IndexDocuments)
}

// ReindexDocuments handles POST /api/v1/search/{documentType}/documents/reindex
func (h *SearchHandler) ReindexDocuments(w http.ResponseWriter, r *http.Request) {
	h.indexDocuments(w, r, h.service.ReindexDocuments)
}

type indexFunc func(ctx context.Context, documentType string, documents []search.Document) (*search.IndexingResult, error)

func (h *SearchHandler) indexDocuments(w http.ResponseWriter, r *http.Request, index indexFunc) {
	documentType := chi.URLParam(r, "documentType")
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit for bulk payloads

	var req IndexDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := index(r.Context(), documentType, toDocuments(req.Documents))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// RemoveDocuments handles DELETE /api/v1/search/{documentType}/documents
func (h *SearchHandler) RemoveDocuments(w http.ResponseWriter, r *http.Request) {
	documentType := chi.URLParam(r, "documentType")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RemoveDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.RemoveDocuments(r.Context(), documentType, req.IDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// CreateIndex handles POST /api/v1/search/{documentType}/schema
func (h *SearchHandler) CreateIndex(w http.ResponseWriter, r *http.Request) {
	documentType := chi.URLParam(r, "documentType")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.CreateIndex(r.Context(), documentType, req.Schema.toDocument()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"document_type": documentType, "status": "created"}})
}

// SwapIndex handles POST /api/v1/search/{documentType}/swap
func (h *SearchHandler) SwapIndex(w http.ResponseWriter, r *http.Request) {
	documentType := chi.URLParam(r, "documentType")

	if err := h.service.SwapIndex(r.Context(), documentType); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"document_type": documentType, "status": "swapped"}})
}

// DeleteBackupIndex handles DELETE /api/v1/search/{documentType}/backup
func (h *SearchHandler) DeleteBackupIndex(w http.ResponseWriter, r *http.Request) {
	documentType := chi.URLParam(r, "documentType")

	if err := h.service.DeleteBackupIndex(r.Context(), documentType); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"document_type": documentType, "status": "deleted"}})
}
