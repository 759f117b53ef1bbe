package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecommute/safecommute/internal/geo"
	"github.com/safecommute/safecommute/internal/provider/resilience"
)

const (
	// ProviderName identifies the planning service.
	ProviderName = "safecommute-planner"

	// DefaultBaseURL is the planning service base URL for local development.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the planning service client.
type ClientConfig struct {
	// BaseURL is the service base URL (defaults to local development URL).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 15s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to the remote planning service.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new planning service client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = DefaultTimeout
		if cfg.Timeout != 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// FetchRoutes retrieves the fastest and safest route alternatives
// between src and dst. The result is all-or-nothing: a payload missing
// either route kind fails the whole call.
func (c *Client) FetchRoutes(ctx context.Context, city string, src, dst geo.Coordinate) (*RoutePair, error) {
	if err := src.Validate(); err != nil {
		return nil, &Error{Code: "INVALID_SOURCE", Message: "invalid source coordinates", Err: ErrMalformedResponse}
	}
	if err := dst.Validate(); err != nil {
		return nil, &Error{Code: "INVALID_DESTINATION", Message: "invalid destination coordinates", Err: ErrMalformedResponse}
	}

	params := url.Values{}
	params.Set("city", city)
	params.Set("src_lat", formatCoord(src.Lat))
	params.Set("src_lon", formatCoord(src.Lon))
	params.Set("dst_lat", formatCoord(dst.Lat))
	params.Set("dst_lon", formatCoord(dst.Lon))

	c.logger.Debug().
		Str("city", city).
		Float64("src_lat", src.Lat).
		Float64("src_lon", src.Lon).
		Float64("dst_lat", dst.Lat).
		Float64("dst_lon", dst.Lon).
		Msg("requesting routes from planner")

	var payload routesResponse
	if err := c.get(ctx, "/route", params, &payload); err != nil {
		return nil, err
	}

	// The service reports soft failures as HTTP 200 with an error field.
	if payload.Error != "" {
		return nil, &Error{Code: "PLANNER_ERROR", Message: payload.Error, Err: ErrMalformedResponse}
	}
	if payload.Fastest == nil || payload.Safest == nil {
		return nil, &Error{Code: "MISSING_ROUTE_KIND", Message: "response missing fastest or safest route", Err: ErrMalformedResponse}
	}

	pair := &RoutePair{
		Fastest:   toRoute(payload.Fastest),
		Safest:    toRoute(payload.Safest),
		FetchedAt: time.Now(),
	}

	c.logger.Debug().
		Int("fastest_points", len(pair.Fastest.Coords)).
		Int("safest_points", len(pair.Safest.Coords)).
		Int("fastest_score", pair.Fastest.SafetyScore).
		Int("safest_score", pair.Safest.SafetyScore).
		Msg("received routes from planner")

	return pair, nil
}

// FetchSafeZones retrieves safe places near center, sorted by distance.
// Zones missing a distance get one computed from the center.
func (c *Client) FetchSafeZones(ctx context.Context, city string, center geo.Coordinate) ([]SafeZone, error) {
	if err := center.Validate(); err != nil {
		return nil, &Error{Code: "INVALID_CENTER", Message: "invalid center coordinates", Err: ErrMalformedResponse}
	}

	params := url.Values{}
	params.Set("city", city)
	params.Set("lat", formatCoord(center.Lat))
	params.Set("lon", formatCoord(center.Lon))

	var payload panicResponse
	if err := c.get(ctx, "/panic", params, &payload); err != nil {
		return nil, err
	}
	if payload.Error != "" {
		return nil, &Error{Code: "PLANNER_ERROR", Message: payload.Error, Err: ErrMalformedResponse}
	}

	zones := make([]SafeZone, 0, len(payload.SafeZones))
	for _, z := range payload.SafeZones {
		zone := SafeZone{
			Point:   geo.Coordinate{Lat: z.Lat, Lon: z.Lon},
			Type:    deref(z.Type),
			Name:    deref(z.Name),
			Address: deref(z.Address),
			Phone:   deref(z.Phone),
		}
		if z.DistanceM != nil {
			zone.DistanceM = *z.DistanceM
		} else {
			zone.DistanceM = geo.HaversineMeters(center, zone.Point)
		}
		zones = append(zones, zone)
	}

	c.logger.Debug().
		Int("zone_count", len(zones)).
		Msg("received safe zones from planner")

	return zones, nil
}

// SubmitReport reports an unsafe spot at the given location.
func (c *Client) SubmitReport(ctx context.Context, loc geo.Coordinate, note string) (*ReportAck, error) {
	if err := loc.Validate(); err != nil {
		return nil, &Error{Code: "INVALID_LOCATION", Message: "invalid report coordinates", Err: ErrMalformedResponse}
	}

	params := url.Values{}
	params.Set("lat", formatCoord(loc.Lat))
	params.Set("lon", formatCoord(loc.Lon))
	params.Set("note", note)

	endpoint := fmt.Sprintf("%s/report?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var payload reportResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	if payload.Error != "" {
		return nil, &Error{Code: "PLANNER_ERROR", Message: payload.Error, Err: ErrServiceUnavailable}
	}

	c.logger.Info().
		Float64("lat", payload.Lat).
		Float64("lon", payload.Lon).
		Msg("report acknowledged by planner")

	return &ReportAck{
		Status: payload.Status,
		Point:  geo.Coordinate{Lat: payload.Lat, Lon: payload.Lon},
		Note:   payload.Note,
	}, nil
}

// Cities lists the cities the planning service has graphs for.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	var payload citiesResponse
	if err := c.get(ctx, "/cities", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Cities, nil
}

// get issues a GET request against the service and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Code: "REQUEST_FAILED", Message: "failed to reach planning service", Err: ErrServiceUnavailable}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &Error{
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: fmt.Sprintf("planning service returned status %d", resp.StatusCode),
			Err:     ErrServiceUnavailable,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Code: "DECODE_FAILED", Message: "decoding planning service response", Err: ErrMalformedResponse}
	}
	return nil
}

// toRoute converts a wire route payload to the domain model.
// Coords arrive as [lat, lon] pairs; malformed pairs are skipped.
func toRoute(p *routePayload) Route {
	coords := make([]geo.Coordinate, 0, len(p.Coords))
	for _, pt := range p.Coords {
		if len(pt) < 2 {
			continue
		}
		coords = append(coords, geo.Coordinate{Lat: pt[0], Lon: pt[1]})
	}
	return Route{
		Coords:      coords,
		DistanceKm:  p.DistanceKm,
		TimeMin:     p.TimeMin,
		SafetyScore: p.SafetyScore,
		Breakdown:   p.Breakdown,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
