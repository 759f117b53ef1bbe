// Package trip owns the route-planning session: query inputs, in-flight
// request lifecycle, resulting routes, and the panic/report overlays.
package trip

import (
	"errors"
	"time"

	"github.com/safecommute/safecommute/internal/geo"
	"github.com/safecommute/safecommute/internal/geocode"
	"github.com/safecommute/safecommute/internal/planner"
)

// Orchestrator errors. Validation errors are raised locally before any
// network call is issued.
var (
	// ErrMissingQuery indicates an empty source or destination query.
	ErrMissingQuery = errors.New("source and destination are required")
	// ErrNoSourceLocation indicates panic was triggered before a source
	// was resolved.
	ErrNoSourceLocation = errors.New("no resolved source location")
	// ErrNoDestinationLocation indicates a report was submitted before a
	// destination was resolved.
	ErrNoDestinationLocation = errors.New("no resolved destination location")
	// ErrNoSafeZones indicates the panic lookup returned no safe places.
	// Any overlay from a prior trigger is retained.
	ErrNoSafeZones = errors.New("no safe locations found nearby")
	// ErrSuperseded indicates a newer plan request was issued while this
	// one was in flight; its result was discarded.
	ErrSuperseded = errors.New("route request superseded by a newer request")
	// ErrUnknownTab indicates an invalid route tab selection.
	ErrUnknownTab = errors.New("unknown route tab")
)

// RouteKind identifies one of the two route alternatives.
type RouteKind string

const (
	// KindFastest is the shortest-travel-time route.
	KindFastest RouteKind = "fastest"
	// KindSafest is the highest-safety-score route.
	KindSafest RouteKind = "safest"
)

// Report is a crowd-sourced unsafe-spot marker. Reports are append-only
// within a session and never deduplicated.
type Report struct {
	ID          string
	Point       geo.Coordinate
	Note        string
	SubmittedAt time.Time
}

// Session is the aggregate view state owned by the orchestrator. The
// presentation layer only reads it. Fastest and Safest are set and
// cleared together; the view must never mix a stale kind with a fresh
// one.
type Session struct {
	City     string
	SrcQuery string
	DstQuery string

	Src *geocode.ResolvedLocation
	Dst *geocode.ResolvedLocation

	Fastest *planner.Route
	Safest  *planner.Route

	ActiveTab RouteKind
	SafeZones []planner.SafeZone
	Reports   []Report
}

// clone returns a copy of the session safe to hand to callers. Slice
// headers are copied so later appends do not alias.
func (s *Session) clone() Session {
	out := *s
	if s.SafeZones != nil {
		out.SafeZones = append([]planner.SafeZone(nil), s.SafeZones...)
	}
	if s.Reports != nil {
		out.Reports = append([]Report(nil), s.Reports...)
	}
	return out
}
