package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/elasticbridge/internal/service"
	"github.com/utafrali/elasticbridge/pkg/health"
	"github.com/utafrali/elasticbridge/pkg/middleware"
)

// NewRouter creates a chi router with all search bridge routes registered.
func NewRouter(
	searchService *service.SearchService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics())

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Search API endpoints
	searchHandler := NewSearchHandler(searchService, logger)

	r.Route("/api/v1/search/{documentType}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/query", searchHandler.Search)
			r.Post("/suggest", searchHandler.Suggest)
			r.Post("/documents", searchHandler.IndexDocuments)
			r.Post("/documents/reindex", searchHandler.ReindexDocuments)
			r.Delete("/documents", searchHandler.RemoveDocuments)
			r.Post("/schema", searchHandler.CreateIndex)
		})

		r.Post("/swap", searchHandler.SwapIndex)
		r.Delete("/backup", searchHandler.DeleteBackupIndex)
	})

	return r
}
