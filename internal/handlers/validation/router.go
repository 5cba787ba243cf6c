package validation

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kevin07696/payout-validation/pkg/middleware"
	"github.com/kevin07696/payout-validation/pkg/observability"
)

// RouterConfig holds the cross-cutting pieces of the HTTP stack
type RouterConfig struct {
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
	Health         *observability.HealthChecker
	Development    bool
}

// NewRouter mounts the validation API under /api/v1
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(observability.HTTPMetrics)
	r.Use(middleware.SecurityHeaders(cfg.Development))
	r.Use(chimiddleware.Compress(5, "application/json"))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         int((10 * time.Minute).Seconds()),
		}))
	}

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.HealthHandler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}

		r.Route("/payout-batches/validate", func(r chi.Router) {
			r.Post("/creation", h.ValidateCreation)
			r.Post("/processing", h.ValidateProcessing)
			r.Post("/compliance", h.ValidateCompliance)
		})
		r.Get("/validation-reports/{id}", h.GetReport)
	})

	return r
}
