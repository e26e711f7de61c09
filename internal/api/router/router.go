package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kctmenswear/atelier-engine/internal/http/handlers"
	httpmiddleware "github.com/kctmenswear/atelier-engine/internal/http/middleware"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *handlers.ChatHandler
	ExperimentsHandler *handlers.ExperimentsHandler
	AnalyticsHandler   *handlers.AnalyticsHandler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
	ChatRateLimit      float64
	ChatRateBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.ChatHandler.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		public.Route("/chat", func(r chi.Router) {
			if cfg.ChatRateLimit > 0 {
				r.Use(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst))
			}
			r.Post("/select", cfg.ChatHandler.Select)
		})

		public.Route("/experiments", func(r chi.Router) {
			r.Get("/{experimentID}", cfg.ExperimentsHandler.Get)
			r.Get("/{experimentID}/results", cfg.ExperimentsHandler.Results)
			r.Post("/{experimentID}/allocate", cfg.ExperimentsHandler.Allocate)
			r.Post("/{experimentID}/convert", cfg.ExperimentsHandler.Convert)
			r.Post("/{experimentID}/feedback", cfg.ExperimentsHandler.Feedback)
		})

		if cfg.AnalyticsHandler != nil {
			public.Route("/analytics", func(r chi.Router) {
				r.Get("/agents/{agent}", cfg.AnalyticsHandler.AgentPerformance)
				r.Get("/intents", cfg.AnalyticsHandler.IntentDistribution)
				r.Get("/moods", cfg.AnalyticsHandler.MoodDistribution)
				r.Get("/responses/top", cfg.AnalyticsHandler.TopResponses)
			})
		}
	})

	// Admin endpoints (lifecycle mutations) behind the JWT gate
	r.Group(func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		admin.Post("/experiments", cfg.ExperimentsHandler.Create)
		admin.Post("/experiments/{experimentID}/pause", cfg.ExperimentsHandler.Pause)
		admin.Post("/experiments/{experimentID}/resume", cfg.ExperimentsHandler.Resume)
		if cfg.AnalyticsHandler != nil {
			admin.Post("/analytics/flush", cfg.AnalyticsHandler.Flush)
		}
	})

	return r
}
