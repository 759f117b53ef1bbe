package viewport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safecommute/safecommute/internal/geo"
	"github.com/safecommute/safecommute/internal/planner"
)

func routeWithCoords(coords ...geo.Coordinate) *planner.Route {
	return &planner.Route{Coords: coords}
}

func TestBoundsFor_NoGeometry(t *testing.T) {
	_, err := BoundsFor(nil, nil)
	require.True(t, errors.Is(err, ErrNoFit))

	_, err = BoundsFor(routeWithCoords(), routeWithCoords())
	require.True(t, errors.Is(err, ErrNoFit))
}

func TestBoundsFor_SingleRoute(t *testing.T) {
	fastest := routeWithCoords(
		geo.Coordinate{Lat: 12.97, Lon: 77.59},
		geo.Coordinate{Lat: 12.99, Lon: 77.62},
	)

	region, err := BoundsFor(fastest, nil)
	require.NoError(t, err)

	assert.InDelta(t, 12.97-DefaultPaddingDegrees, region.MinLat, 1e-9)
	assert.InDelta(t, 12.99+DefaultPaddingDegrees, region.MaxLat, 1e-9)
	assert.InDelta(t, 77.59-DefaultPaddingDegrees, region.MinLon, 1e-9)
	assert.InDelta(t, 77.62+DefaultPaddingDegrees, region.MaxLon, 1e-9)
}

func TestBoundsFor_BothRoutes(t *testing.T) {
	fastest := routeWithCoords(geo.Coordinate{Lat: 12.97, Lon: 77.59})
	safest := routeWithCoords(geo.Coordinate{Lat: 13.01, Lon: 77.55})

	region, err := BoundsFor(fastest, safest)
	require.NoError(t, err)

	assert.True(t, region.Contains(geo.Coordinate{Lat: 12.97, Lon: 77.59}))
	assert.True(t, region.Contains(geo.Coordinate{Lat: 13.01, Lon: 77.55}))
}

func TestBoundsFor_Idempotent(t *testing.T) {
	fastest := routeWithCoords(
		geo.Coordinate{Lat: 12.97, Lon: 77.59},
		geo.Coordinate{Lat: 12.99, Lon: 77.62},
	)
	safest := routeWithCoords(geo.Coordinate{Lat: 12.95, Lon: 77.60})

	first, err := BoundsFor(fastest, safest)
	require.NoError(t, err)
	second, err := BoundsFor(fastest, safest)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestController_RecomputesOnIdentityChange(t *testing.T) {
	c := NewController()

	fastest := routeWithCoords(geo.Coordinate{Lat: 12.97, Lon: 77.59})
	safest := routeWithCoords(geo.Coordinate{Lat: 12.99, Lon: 77.62})

	_, changed := c.Update(fastest, safest)
	assert.True(t, changed)

	// Same identity: no recompute.
	_, changed = c.Update(fastest, safest)
	assert.False(t, changed)

	// New fetch produces new route values.
	fresh := routeWithCoords(geo.Coordinate{Lat: 13.10, Lon: 77.70})
	region, changed := c.Update(fresh, safest)
	assert.True(t, changed)
	assert.True(t, region.Contains(geo.Coordinate{Lat: 13.10, Lon: 77.70}))
}

func TestController_KeepsViewportWhenNothingToFit(t *testing.T) {
	c := NewController()

	fastest := routeWithCoords(geo.Coordinate{Lat: 12.97, Lon: 77.59})
	before, changed := c.Update(fastest, nil)
	require.True(t, changed)

	// No geometry: previous region retained, not reset to a default.
	after, changed := c.Update(nil, nil)
	assert.False(t, changed)
	assert.Equal(t, before, after)
}

func TestRegion_Center(t *testing.T) {
	r := Region{BoundingBox: geo.BoundingBox{MinLat: 10, MaxLat: 12, MinLon: 70, MaxLon: 74}}
	center := r.Center()
	assert.InDelta(t, 11.0, center.Lat, 1e-9)
	assert.InDelta(t, 72.0, center.Lon, 1e-9)
}
