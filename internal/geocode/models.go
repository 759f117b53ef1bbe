// Package geocode defines the contract for resolving free-text place
// queries to coordinates.
package geocode

import (
	"context"
	"errors"

	"github.com/safecommute/safecommute/internal/geo"
)

// Sentinel errors for geocoding operations.
var (
	// ErrNotFound indicates the query is empty or matched no place.
	ErrNotFound = errors.New("no matching location found")
	// ErrUnavailable indicates the geocoding service could not be reached.
	ErrUnavailable = errors.New("geocoding service unavailable")
)

// Resolver resolves a free-text place query within a city context.
type Resolver interface {
	// Resolve returns the highest-ranked match for the query.
	// The resolver never mutates shared state; callers own the result.
	Resolve(ctx context.Context, query, city string) (*ResolvedLocation, error)
}

// ResolvedLocation is a successfully geocoded place.
type ResolvedLocation struct {
	Point       geo.Coordinate
	DisplayName string // echoed from the geocoder
	Query       string // the source query that produced this location
}
