// Package api provides the HTTP API for the SafeCommute companion app.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/safecommute/safecommute/internal/api/handler"
	"github.com/safecommute/safecommute/internal/api/middleware"
	"github.com/safecommute/safecommute/internal/trip"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	BuildTime    string
	Logger       zerolog.Logger
	Metrics      *middleware.Metrics
	Orchestrator *trip.Orchestrator
	CityLister   handler.CityLister
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime)
	tripHandler := handler.NewTripHandler(cfg.Orchestrator)
	metadataHandler := handler.NewMetadataHandler(cfg.CityLister)

	planRateLimit := middleware.RateLimitByIP(middleware.PlanRateLimit)         // 30 req/min
	reportRateLimit := middleware.RateLimitByIP(middleware.ReportRateLimit)     // 10 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/cities", metadataHandler.ListCities)
		})

		r.Route("/trip", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", tripHandler.GetSession)
			r.With(standardRateLimit).Put("/tab", tripHandler.SelectTab)
			r.With(planRateLimit).Post("/routes", tripHandler.PlanRoutes)
			r.With(planRateLimit).Post("/panic", tripHandler.Panic)
			r.With(reportRateLimit).Post("/reports", tripHandler.SubmitReport)
		})
	})

	return r
}
