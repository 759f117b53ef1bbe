// Package viewport computes the map region that fits the currently
// displayed route geometry.
package viewport

import (
	"errors"
	"sync"

	"github.com/safecommute/safecommute/internal/geo"
	"github.com/safecommute/safecommute/internal/planner"
)

// ErrNoFit indicates there is no geometry to fit. The caller must leave
// the viewport unchanged rather than reset it to a default.
var ErrNoFit = errors.New("no geometry to fit")

// DefaultPaddingDegrees is the fixed margin added on every side of the
// fitted region, roughly 550m of latitude.
const DefaultPaddingDegrees = 0.005

// Region is a padded geographic bounding region for the map viewport.
type Region struct {
	geo.BoundingBox
}

// Center returns the midpoint of the region.
func (r Region) Center() geo.Coordinate {
	return geo.Coordinate{
		Lat: (r.MinLat + r.MaxLat) / 2,
		Lon: (r.MinLon + r.MaxLon) / 2,
	}
}

// BoundsFor computes the minimal enclosing region over the coordinates
// of whichever routes are present, fastest first, padded by
// DefaultPaddingDegrees. Returns ErrNoFit when there is nothing to fit.
func BoundsFor(fastest, safest *planner.Route) (Region, error) {
	return boundsWithPadding(fastest, safest, DefaultPaddingDegrees)
}

func boundsWithPadding(fastest, safest *planner.Route, padding float64) (Region, error) {
	var coords []geo.Coordinate
	if fastest != nil {
		coords = append(coords, fastest.Coords...)
	}
	if safest != nil {
		coords = append(coords, safest.Coords...)
	}
	if len(coords) == 0 {
		return Region{}, ErrNoFit
	}

	box := geo.BoundingBox{
		MinLat: coords[0].Lat,
		MaxLat: coords[0].Lat,
		MinLon: coords[0].Lon,
		MaxLon: coords[0].Lon,
	}
	for _, c := range coords[1:] {
		if c.Lat < box.MinLat {
			box.MinLat = c.Lat
		}
		if c.Lat > box.MaxLat {
			box.MaxLat = c.Lat
		}
		if c.Lon < box.MinLon {
			box.MinLon = c.Lon
		}
		if c.Lon > box.MaxLon {
			box.MaxLon = c.Lon
		}
	}

	box.MinLat -= padding
	box.MaxLat += padding
	box.MinLon -= padding
	box.MaxLon += padding

	return Region{BoundingBox: box}, nil
}

// Controller tracks route identity so the region is recomputed only
// when a new fetch completes, not on every render. Safe for concurrent
// use.
type Controller struct {
	padding float64

	mu          sync.Mutex
	lastFastest *planner.Route
	lastSafest  *planner.Route
	region      Region
	fitted      bool
}

// NewController creates a controller with the default padding.
func NewController() *Controller {
	return &Controller{padding: DefaultPaddingDegrees}
}

// Update recomputes the region if either route changed identity.
// It returns the current region and whether it changed. When no
// geometry is present the previous region is retained.
func (c *Controller) Update(fastest, safest *planner.Route) (Region, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fastest == c.lastFastest && safest == c.lastSafest && c.fitted {
		return c.region, false
	}

	c.lastFastest = fastest
	c.lastSafest = safest

	region, err := boundsWithPadding(fastest, safest, c.padding)
	if err != nil {
		// Nothing to fit: keep the previous viewport.
		return c.region, false
	}

	changed := !c.fitted || region != c.region
	c.region = region
	c.fitted = true
	return c.region, changed
}

// Region returns the last fitted region and whether one exists.
func (c *Controller) Region() (Region, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region, c.fitted
}
