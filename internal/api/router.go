package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"itemvault/internal/middleware"
)

// RouterConfig holds the cross-cutting options for the HTTP router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// NewRouter builds the chi router for the service.
//
// The health check sits outside the identity middleware so probes work
// without proxy headers. Everything else under /api/v1 requires a resolved
// Principal, including the graph endpoint.
func NewRouter(h *Handler, graph http.Handler, identity func(http.Handler) http.Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/utils/health-check", h.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(identity)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", h.ListItems)
				r.Post("/", h.CreateItem)
				r.Get("/{id}", h.GetItem)
				r.Put("/{id}", h.UpdateItem)
				r.Delete("/{id}", h.DeleteItem)
			})

			r.Get("/users/me", h.GetCurrentUser)

			r.Post("/graphql", graph.ServeHTTP)
		})
	})

	return r
}
