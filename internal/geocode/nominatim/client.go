// Package nominatim provides a client for the Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecommute/safecommute/internal/geo"
	"github.com/safecommute/safecommute/internal/geocode"
	"github.com/safecommute/safecommute/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultCountry scopes queries when no country is configured.
	DefaultCountry = "India"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to the public instance).
	BaseURL string

	// Country is appended to every query to scope results.
	Country string

	// UserAgent identifies this application per Nominatim usage policy.
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim search client.
type Client struct {
	baseURL    string
	country    string
	userAgent  string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	country := cfg.Country
	if country == "" {
		country = DefaultCountry
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "safecommute-app"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout != 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		country:    country,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// searchResult is a single entry in the Nominatim search response.
// Nominatim encodes coordinates as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the highest-ranked match for the query within the
// configured country and the given city context.
func (c *Client) Resolve(ctx context.Context, query, city string) (*geocode.ResolvedLocation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, geocode.ErrNotFound
	}

	q := query
	if city != "" {
		q = fmt.Sprintf("%s, %s, %s", query, city, c.country)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", "1")

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("query", query).
		Str("city", city).
		Msg("resolving location via nominatim")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", geocode.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", geocode.ErrUnavailable, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", geocode.ErrUnavailable, err)
	}

	if len(results) == 0 {
		return nil, geocode.ErrNotFound
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude %q", geocode.ErrUnavailable, first.Lat)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude %q", geocode.ErrUnavailable, first.Lon)
	}

	point := geo.Coordinate{Lat: lat, Lon: lon}
	if err := point.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", geocode.ErrUnavailable, err)
	}

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("display_name", first.DisplayName).
		Msg("location resolved")

	return &geocode.ResolvedLocation{
		Point:       point,
		DisplayName: first.DisplayName,
		Query:       query,
	}, nil
}
