// Package config loads application configuration from the environment,
// with optional .env file support for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the companion app configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// Environment is the deployment environment name.
	Environment string

	// PlannerBaseURL is the remote planning service base URL.
	PlannerBaseURL string

	// GeocoderBaseURL is the Nominatim base URL.
	GeocoderBaseURL string

	// GeocoderCountry scopes every geocoding query.
	GeocoderCountry string

	// DefaultCity preselects a city in the UI.
	DefaultCity string

	// RemoteTimeout bounds each outbound remote call.
	RemoteTimeout time.Duration

	// OTLPEndpoint is the OpenTelemetry collector endpoint.
	OTLPEndpoint string

	// TelemetryEnabled toggles OTLP export.
	TelemetryEnabled bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment
// variables win over file values.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:             getEnv("APP_PORT", "8080"),
		Environment:      getEnv("APP_ENV", "development"),
		PlannerBaseURL:   getEnv("PLANNER_BASE_URL", "http://localhost:8000"),
		GeocoderBaseURL:  getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderCountry:  getEnv("GEOCODER_COUNTRY", "India"),
		DefaultCity:      getEnv("DEFAULT_CITY", "bengaluru"),
		RemoteTimeout:    getDuration("REMOTE_TIMEOUT_SECONDS", 15*time.Second),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
