// Package main provides the entrypoint for the SafeCommute companion
// app server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecommute/safecommute/internal/api"
	"github.com/safecommute/safecommute/internal/api/middleware"
	"github.com/safecommute/safecommute/internal/config"
	"github.com/safecommute/safecommute/internal/geocode/nominatim"
	"github.com/safecommute/safecommute/internal/planner"
	"github.com/safecommute/safecommute/internal/telemetry"
	"github.com/safecommute/safecommute/internal/trip"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "safecommute-app"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SafeCommute companion app")

	cfg := config.Load()

	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL: cfg.GeocoderBaseURL,
		Country: cfg.GeocoderCountry,
		Timeout: cfg.RemoteTimeout,
		Logger:  log.With().Str("component", "geocoder").Logger(),
	})
	log.Info().Str("base_url", cfg.GeocoderBaseURL).Msg("geocoder client initialized")

	plannerClient := planner.NewClient(planner.ClientConfig{
		BaseURL: cfg.PlannerBaseURL,
		Timeout: cfg.RemoteTimeout,
		Logger:  log.With().Str("component", "planner").Logger(),
	})
	log.Info().Str("base_url", cfg.PlannerBaseURL).Msg("planner client initialized")

	orchestrator := trip.NewOrchestrator(trip.OrchestratorConfig{
		Resolver: geocoder,
		Planner:  plannerClient,
		Logger:   log.With().Str("component", "orchestrator").Logger(),
	})
	log.Info().Str("default_city", cfg.DefaultCity).Msg("trip orchestrator initialized")

	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		Metrics:      metrics,
		Orchestrator: orchestrator,
		CityLister:   plannerClient,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
