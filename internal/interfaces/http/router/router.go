// Package router assembles the chi router of the ideas API.
package router

import (
	"net/http"
	"time"

	"ideas-backend/internal/config"
	"ideas-backend/internal/infrastructure/observability"
	"ideas-backend/internal/interfaces/http/handlers"
	"ideas-backend/internal/interfaces/http/middleware"
	"ideas-backend/internal/repository"
	"ideas-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Handlers groups the route handlers.
type Handlers struct {
	Topics *handlers.TopicHandler
	Ideas  *handlers.IdeaHandler
	Auth   *handlers.AuthHandler
	Health *handlers.HealthHandler
}

// New creates the router with all routes and middleware. metrics may be nil.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Collector,
	gate *middleware.Gate,
	idempotency repository.IdempotencyStore,
	h *Handlers,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{middleware.ReplayedHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
	}
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	}
	r.Use(gate.Handler)

	r.Get("/health", h.Health.Check)
	r.Get("/ready", h.Health.Ready)
	r.Get("/swagger/doc.json", api.SwaggerHandler())
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	idempotent := middleware.Idempotency(idempotency, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.SignUp)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/user", middleware.WithAuth(h.Auth.User))
		})

		r.Route("/idea-topics", func(r chi.Router) {
			r.Get("/", middleware.WithAuth(h.Topics.List))
			r.With(idempotent).Post("/", middleware.WithAuth(h.Topics.Create))
			r.Get("/{id}", middleware.WithAuth(h.Topics.Get))
			r.Put("/{id}", middleware.WithAuth(h.Topics.Update))
			r.Delete("/{id}", middleware.WithAuth(h.Topics.Delete))
			r.Get("/{id}/ideas", middleware.WithAuth(h.Topics.ListIdeas))
		})

		r.Route("/ideas", func(r chi.Router) {
			r.Get("/", middleware.WithAuth(h.Ideas.List))
			r.With(idempotent).Post("/", middleware.WithAuth(h.Ideas.Create))
			r.Get("/{id}", middleware.WithAuth(h.Ideas.Get))
			r.Put("/{id}", middleware.WithAuth(h.Ideas.Update))
			r.Delete("/{id}", middleware.WithAuth(h.Ideas.Delete))
			r.Post("/{id}/feedback", middleware.WithAuth(h.Ideas.AddFeedback))
		})
	})

	return r
}

// Server builds the HTTP server for handler.
func Server(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
