// Package service implements the business logic in front of the search
// provider: request validation, paging defaults, and index lifecycle
// orchestration.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/elasticbridge/internal/search"
	pkgkafka "github.com/utafrali/elasticbridge/pkg/kafka"
	"github.com/utafrali/elasticbridge/pkg/logger"
)

const (
	defaultTake = 20
	maxTake     = 1000
)

// Provider is the search backend the service delegates to.
type Provider interface {
	Search(ctx context.Context, documentType string, request *search.Request) (*search.Response, error)
	Suggest(ctx context.Context, documentType string, request *search.SuggestionRequest) (*search.SuggestionResponse, error)
	Index(ctx context.Context, documentType string, documents []search.Document) (*search.IndexingResult, error)
	IndexWithBackup(ctx context.Context, documentType string, documents []search.Document) (*search.IndexingResult, error)
	CreateIndex(ctx context.Context, documentType string, schema search.Document) error
	Remove(ctx context.Context, documentType string, ids []string) (*search.IndexingResult, error)
	DeleteIndex(ctx context.Context, documentType string) error
	SwapIndex(ctx context.Context, documentType string) error
}

// Publisher emits index lifecycle events. A nil publisher disables emission.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// SearchService implements the business logic for search operations.
type SearchService struct {
	provider  Provider
	publisher Publisher
	logger    *slog.Logger
}

// NewSearchService creates a new search service. publisher may be nil.
func NewSearchService(provider Provider, publisher Publisher, logger *slog.Logger) *SearchService {
	return &SearchService{
		provider:  provider,
		publisher: publisher,
		logger:    logger,
	}
}

// Search executes a search request against a document type, applying paging
// defaults before delegating.
func (s *SearchService) Search(ctx context.Context, documentType string, request *search.Request) (*search.Response, error) {
	if documentType == "" {
		return nil, fmt.Errorf("search: document type is required")
	}
	if request == nil {
		request = &search.Request{}
	}
	if request.Skip < 0 {
		request.Skip = 0
	}
	if request.Take <= 0 {
		request.Take = defaultTake
	}
	if request.Take > maxTake {
		request.Take = maxTake
	}

	result, err := s.provider.Search(ctx, documentType, request)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("document_type", documentType),
		slog.String("keywords", request.SearchKeywords),
		slog.Int64("total", result.TotalCount),
	)

	return result, nil
}

// Suggest returns type-ahead completions for a query prefix.
func (s *SearchService) Suggest(ctx context.Context, documentType string, request *search.SuggestionRequest) (*search.SuggestionResponse, error) {
	if documentType == "" {
		return nil, fmt.Errorf("suggest: document type is required")
	}
	if request == nil {
		request = &search.SuggestionRequest{}
	}
	if request.Size < 0 {
		request.Size = 0
	}

	result, err := s.provider.Suggest(ctx, documentType, request)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return result, nil
}

// IndexDocuments indexes documents into the active index of a document type.
// Per-document failures are reported in the result, not as errors.
func (s *SearchService) IndexDocuments(ctx context.Context, documentType string, documents []search.Document) (*search.IndexingResult, error) {
	if documentType == "" {
		return nil, fmt.Errorf("index documents: document type is required")
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("index documents: at least one document is required")
	}

	result, err := s.provider.Index(ctx, documentType, documents)
	if err != nil {
		return nil, fmt.Errorf("index documents: %w", err)
	}

	s.logger.InfoContext(ctx, "documents indexed",
		slog.String("document_type", documentType),
		slog.Int("count", len(documents)),
		slog.Int("failed", failedCount(result)),
	)

	return result, nil
}

// ReindexDocuments indexes documents into the backup index of a document
// type, building the next generation without touching live searches. Promote
// the generation with SwapIndex once the rebuild is complete.
func (s *SearchService) ReindexDocuments(ctx context.Context, documentType string, documents []search.Document) (*search.IndexingResult, error) {
	if documentType == "" {
		return nil, fmt.Errorf("reindex documents: document type is required")
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("reindex documents: at least one document is required")
	}

	result, err := s.provider.IndexWithBackup(ctx, documentType, documents)
	if err != nil {
		return nil, fmt.Errorf("reindex documents: %w", err)
	}

	s.logger.InfoContext(ctx, "documents indexed into backup",
		slog.String("document_type", documentType),
		slog.Int("count", len(documents)),
		slog.Int("failed", failedCount(result)),
	)

	return result, nil
}

// RemoveDocuments deletes documents by id from the active index.
func (s *SearchService) RemoveDocuments(ctx context.Context, documentType string, ids []string) (*search.IndexingResult, error) {
	if documentType == "" {
		return nil, fmt.Errorf("remove documents: document type is required")
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("remove documents: at least one id is required")
	}

	result, err := s.provider.Remove(ctx, documentType, ids)
	if err != nil {
		return nil, fmt.Errorf("remove documents: %w", err)
	}

	s.logger.InfoContext(ctx, "documents removed",
		slog.String("document_type", documentType),
		slog.Int("count", len(ids)),
	)

	return result, nil
}

// CreateIndex ensures the index for a document type exists with the mapping
// derived from the schema document, without indexing it.
func (s *SearchService) CreateIndex(ctx context.Context, documentType string, schema search.Document) error {
	if documentType == "" {
		return fmt.Errorf("create index: document type is required")
	}
	if len(schema.Fields) == 0 {
		return fmt.Errorf("create index: schema document has no fields")
	}

	if err := s.provider.CreateIndex(ctx, documentType, schema); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.logger.InfoContext(ctx, "index created",
		slog.String("document_type", documentType),
	)

	return nil
}

// SwapIndex promotes the backup index generation to active. The previous
// active generation becomes the backup. Emits an index.swapped event when a
// publisher is configured.
func (s *SearchService) SwapIndex(ctx context.Context, documentType string) error {
	if documentType == "" {
		return fmt.Errorf("swap index: document type is required")
	}

	if err := s.provider.SwapIndex(ctx, documentType); err != nil {
		return fmt.Errorf("swap index: %w", err)
	}

	s.logger.InfoContext(ctx, "index swapped",
		slog.String("document_type", documentType),
	)

	s.publishLifecycle(ctx, pkgkafka.Topic("index", "swapped"), documentType)
	return nil
}

// DeleteBackupIndex drops the backup index generation of a document type.
// Absent backups are not an error.
func (s *SearchService) DeleteBackupIndex(ctx context.Context, documentType string) error {
	if documentType == "" {
		return fmt.Errorf("delete backup index: document type is required")
	}

	if err := s.provider.DeleteIndex(ctx, documentType); err != nil {
		return fmt.Errorf("delete backup index: %w", err)
	}

	return nil
}

// IndexLifecycleData is the payload of index lifecycle events.
type IndexLifecycleData struct {
	DocumentType string `json:"document_type"`
}

// publishLifecycle emits a lifecycle event, logging failures without
// propagating them: event emission never fails the operation itself.
func (s *SearchService) publishLifecycle(ctx context.Context, topic, documentType string) {
	if s.publisher == nil {
		return
	}

	event, err := pkgkafka.NewEvent(topic, documentType, "index", "search-bridge", IndexLifecycleData{DocumentType: documentType})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build lifecycle event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish lifecycle event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
	}
}

func failedCount(result *search.IndexingResult) int {
	if result == nil {
		return 0
	}
	failed := 0
	for _, item := range result.Items {
		if !item.Succeeded {
			failed++
		}
	}
	return failed
}
