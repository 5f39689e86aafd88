package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pulsedash/pulsedash/internal/config"
	"github.com/pulsedash/pulsedash/internal/handler"
	"github.com/pulsedash/pulsedash/internal/middleware"
)

// routes groups the handlers mounted by setupRouter.
type routes struct {
	root      *handler.Handler
	health    *handler.HealthHandler
	metrics   *handler.MetricsHandler
	auth      *handler.AuthHandler
	dashboard *handler.DashboardHandler
	verifier  middleware.TokenVerifier
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(rt routes, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.CORS(corsCfg))

	// Probes and metrics
	r.Get("/", rt.root.Hello)
	r.Get("/healthz", rt.health.Healthz)
	r.Get("/readyz", rt.health.Readyz)
	r.Get("/metrics", rt.metrics.Metrics)
	r.Get("/openapi.yaml", rt.root.OpenAPI)

	// Public auth endpoints
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", rt.auth.Register)
		r.Post("/login", rt.auth.Login)
	})

	// Session-protected API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:   logger,
			Verifier: rt.verifier,
		}))

		r.Get("/me", rt.auth.Me)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/overview", rt.dashboard.Overview)
			r.Get("/weather", rt.dashboard.Weather)
			r.Get("/news", rt.dashboard.News)
			r.Get("/github", rt.dashboard.GitHub)
			r.Get("/finance", rt.dashboard.Finance)
		})
	})

	r.NotFound(rt.root.NotFound)
	r.MethodNotAllowed(rt.root.MethodNotAllowed)

	return r
}
