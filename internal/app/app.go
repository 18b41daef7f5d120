package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/elasticbridge/internal/config"
	"github.com/utafrali/elasticbridge/internal/elastic"
	"github.com/utafrali/elasticbridge/internal/event"
	handler "github.com/utafrali/elasticbridge/internal/handler/http"
	"github.com/utafrali/elasticbridge/internal/service"
	"github.com/utafrali/elasticbridge/pkg/health"
	pkgkafka "github.com/utafrali/elasticbridge/pkg/kafka"
)

// App wires together all dependencies and runs the search bridge.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	provider   *elastic.Provider
	producer   *pkgkafka.Producer
	dlq        *pkgkafka.DLQProducer
	consumers  []*pkgkafka.Consumer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	provider, err := elastic.NewProvider(cfg.ProviderOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("init elasticsearch provider: %w", err)
	}
	logger.Info("elasticsearch provider initialized",
		slog.String("url", cfg.ElasticsearchURL),
		slog.String("scope", cfg.Scope),
		slog.Any("document_types", cfg.DocumentTypes),
	)

	// Kafka is optional: without it the bridge still serves the HTTP API,
	// it just does not consume document events or publish lifecycle events.
	var producer *pkgkafka.Producer
	var dlq *pkgkafka.DLQProducer
	var consumers []*pkgkafka.Consumer
	var searchService *service.SearchService

	if cfg.KafkaEventsEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		searchService = service.NewSearchService(provider, producer, logger)

		dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		eventConsumer := event.NewConsumer(searchService, logger)

		topics := []string{
			event.TopicDocumentUpserted,
			event.TopicDocumentDeleted,
		}
		for _, topic := range topics {
			consumerCfg := pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  cfg.KafkaGroupID,
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
				DLQ:      dlq,
			}
			c := pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger)
			consumers = append(consumers, c)
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("group_id", cfg.KafkaGroupID),
			slog.Int("topic_count", len(topics)),
		)
	} else {
		searchService = service.NewSearchService(provider, nil, logger)
		logger.Info("kafka events disabled")
	}

	// Health checks. Elasticsearch is critical: without it every operation
	// fails. Kafka only degrades the service.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("elasticsearch", provider.Ping)
	if cfg.KafkaEventsEnabled {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	router := handler.NewRouter(searchService, healthHandler, logger, cfg.PprofAllowedCIDRs)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		provider:   provider,
		producer:   producer,
		dlq:        dlq,
		consumers:  consumers,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	// Ensure every configured document type resolves through its active
	// alias before accepting traffic.
	aliasCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := a.provider.AddActiveAlias(aliasCtx, a.cfg.DocumentTypes); err != nil {
		a.logger.Warn("active alias bootstrap failed",
			slog.String("error", err.Error()),
		)
	}

	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
