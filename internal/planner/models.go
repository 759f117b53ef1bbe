// Package planner provides a client for the remote route-planning
// service and the domain models for its responses.
package planner

import (
	"context"
	"errors"
	"time"

	"github.com/safecommute/safecommute/internal/geo"
)

// Sentinel errors for planning operations.
var (
	// ErrServiceUnavailable indicates the planning service is down or the
	// circuit breaker is open.
	ErrServiceUnavailable = errors.New("planning service unavailable")
	// ErrMalformedResponse indicates the service payload is missing
	// expected fields. Treated as unavailable for user-visible purposes.
	ErrMalformedResponse = errors.New("malformed planning service response")
	// ErrNoRoute indicates no route exists between the given points.
	ErrNoRoute = errors.New("no route found between the given points")
)

// Service defines the operations the planning backend exposes.
type Service interface {
	// FetchRoutes retrieves the fastest and safest route alternatives.
	// The result is all-or-nothing: a payload missing either kind fails
	// the whole call.
	FetchRoutes(ctx context.Context, city string, src, dst geo.Coordinate) (*RoutePair, error)
	// FetchSafeZones retrieves safe places near the given center.
	FetchSafeZones(ctx context.Context, city string, center geo.Coordinate) ([]SafeZone, error)
	// SubmitReport reports an unsafe spot at the given location.
	SubmitReport(ctx context.Context, loc geo.Coordinate, note string) (*ReportAck, error)
	// Cities lists the cities the service has graphs for.
	Cities(ctx context.Context) ([]string, error)
}

// Route is a single route alternative.
type Route struct {
	Coords      []geo.Coordinate
	DistanceKm  float64
	TimeMin     float64
	SafetyScore int // 0-100, higher is safer
	Breakdown   *SafetyBreakdown
}

// SafetyBreakdown explains how the safety score was derived.
type SafetyBreakdown struct {
	ReportsNearby    int `json:"reports_nearby"`
	SafePlacesNearby int `json:"safe_places_nearby"`
	Police           int `json:"police"`
	Hospital         int `json:"hospital"`
	FireStation      int `json:"fire_station"`
}

// RoutePair holds both route alternatives from a single planning
// response. The pair is produced atomically and is never partially
// updated.
type RoutePair struct {
	Fastest   Route
	Safest    Route
	FetchedAt time.Time
}

// SafeZone is a safe place (police station, hospital, fire station)
// returned by a panic lookup. String fields are empty when the service
// has no value for them.
type SafeZone struct {
	Point     geo.Coordinate
	Type      string
	Name      string
	Address   string
	Phone     string
	DistanceM float64
}

// ReportAck acknowledges a submitted report.
type ReportAck struct {
	Status string
	Point  geo.Coordinate
	Note   string
}

// Error provides detailed error information from the planning service.
type Error struct {
	Code    string // short machine-readable code
	Message string // human-readable message
	Err     error  // underlying sentinel error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
