package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/elasticbridge/internal/search"
	"github.com/utafrali/elasticbridge/internal/service"
	pkgkafka "github.com/utafrali/elasticbridge/pkg/kafka"
)

// Kafka topics consumed by the search bridge. Upstream systems publish
// document change events here; the bridge mirrors them into the index.
var (
	TopicDocumentUpserted = pkgkafka.Topic("document", "upserted")
	TopicDocumentDeleted  = pkgkafka.Topic("document", "deleted")
)

// DocumentUpsertedData is the payload of a document.upserted event.
type DocumentUpsertedData struct {
	DocumentType string            `json:"document_type"`
	Documents    []search.Document `json:"documents"`
}

// DocumentDeletedData is the payload of a document.deleted event.
type DocumentDeletedData struct {
	DocumentType string   `json:"document_type"`
	IDs          []string `json:"ids"`
}

// Consumer handles Kafka document change events for search indexing.
type Consumer struct {
	searchService *service.SearchService
	logger        *slog.Logger
}

// NewConsumer creates a new event consumer for the search bridge.
func NewConsumer(searchService *service.SearchService, logger *slog.Logger) *Consumer {
	return &Consumer{
		searchService: searchService,
		logger:        logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicDocumentUpserted:
		return c.handleDocumentUpserted(ctx, event)
	case TopicDocumentDeleted:
		return c.handleDocumentDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleDocumentUpserted indexes created or updated documents.
func (c *Consumer) handleDocumentUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var data DocumentUpsertedData
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if data.DocumentType == "" {
		return fmt.Errorf("document.upserted: document type is required")
	}
	if len(data.Documents) == 0 {
		c.logger.WarnContext(ctx, "document.upserted event carried no documents",
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	result, err := c.searchService.IndexDocuments(ctx, data.DocumentType, data.Documents)
	if err != nil {
		return fmt.Errorf("index documents from upserted event: %w", err)
	}

	for _, item := range result.Items {
		if !item.Succeeded {
			c.logger.ErrorContext(ctx, "document failed to index from event",
				slog.String("document_type", data.DocumentType),
				slog.String("document_id", item.ID),
				slog.String("error", item.ErrorMessage),
			)
		}
	}

	c.logger.InfoContext(ctx, "indexed documents from upserted event",
		slog.String("document_type", data.DocumentType),
		slog.Int("count", len(data.Documents)),
	)

	return nil
}

// handleDocumentDeleted removes deleted documents from the index.
func (c *Consumer) handleDocumentDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data DocumentDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}
	if data.DocumentType == "" {
		return fmt.Errorf("document.deleted: document type is required")
	}
	if len(data.IDs) == 0 {
		c.logger.WarnContext(ctx, "document.deleted event carried no ids",
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	if _, err := c.searchService.RemoveDocuments(ctx, data.DocumentType, data.IDs); err != nil {
		return fmt.Errorf("remove documents from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "removed documents from deleted event",
		slog.String("document_type", data.DocumentType),
		slog.Int("count", len(data.IDs)),
	)

	return nil
}
