package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/safecommute/safecommute/internal/geocode"
)

func TestClient_Resolve_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected path /search, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("q"); got != "Indiranagar, bengaluru, India" {
			t.Errorf("unexpected query %q", got)
		}
		if q.Get("format") != "json" {
			t.Errorf("expected format=json, got %q", q.Get("format"))
		}
		if q.Get("limit") != "1" {
			t.Errorf("expected limit=1, got %q", q.Get("limit"))
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"12.9783692","lon":"77.6408356","display_name":"Indiranagar, Bengaluru, Karnataka, India"}]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	loc, err := client.Resolve(context.Background(), "Indiranagar", "bengaluru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loc.Point.Lat != 12.9783692 || loc.Point.Lon != 77.6408356 {
		t.Errorf("unexpected coordinates: %+v", loc.Point)
	}
	if loc.DisplayName != "Indiranagar, Bengaluru, Karnataka, India" {
		t.Errorf("unexpected display name %q", loc.DisplayName)
	}
	if loc.Query != "Indiranagar" {
		t.Errorf("expected source query echoed, got %q", loc.Query)
	}
}

func TestClient_Resolve_EmptyQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued for an empty query")
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	_, err := client.Resolve(context.Background(), "   ", "bengaluru")
	if !errors.Is(err, geocode.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Resolve_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	_, err := client.Resolve(context.Background(), "zzzzz", "bengaluru")
	if !errors.Is(err, geocode.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Resolve_FirstMatchWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"lat":"12.90","lon":"77.60","display_name":"First"},
			{"lat":"13.00","lon":"77.70","display_name":"Second"}
		]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	loc, err := client.Resolve(context.Background(), "ambiguous", "bengaluru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.DisplayName != "First" {
		t.Errorf("expected highest-ranked match, got %q", loc.DisplayName)
	}
}

func TestClient_Resolve_ServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	_, err := client.Resolve(context.Background(), "Indiranagar", "bengaluru")
	if !errors.Is(err, geocode.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_Resolve_MalformedCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"not-a-number","lon":"77.64","display_name":"Broken"}]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	_, err := client.Resolve(context.Background(), "Indiranagar", "bengaluru")
	if !errors.Is(err, geocode.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
