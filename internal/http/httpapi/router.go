package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"studio/internal/http/handlers"
	"studio/internal/infra"
	"studio/internal/middleware"
)

// NewRouter wires the productions API. Rate limiting applies only to run
// starts; polling endpoints stay cheap and unthrottled.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Logger(logger),
	)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/productions", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).Post("/", app.StartProduction)
		r.Get("/{id}", app.GetProduction)
		r.Get("/{id}/progress", app.GetProgress)
	})

	return r
}
