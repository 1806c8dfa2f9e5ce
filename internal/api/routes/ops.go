package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"Zodbot/internal/api/handlers/health"
	"Zodbot/internal/api/middleware"
)

// OpsDeps are the collaborators of the operations server
type OpsDeps struct {
	DB      health.Pinger
	Metrics http.Handler
	// Limiter is optional; nil disables per-client limiting
	Limiter *middleware.RateLimiter
	Logger  *zap.Logger
}

// NewOpsRouter builds the router serving /health and /metrics
func NewOpsRouter(deps OpsDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	if deps.Limiter != nil {
		r.Use(deps.Limiter.Middleware)
	}

	r.Get("/health", health.Handler(deps.DB, deps.Logger))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}
