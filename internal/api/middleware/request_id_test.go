package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected a request ID in the context")
	}
	if !strings.HasPrefix(seen, "req_") {
		t.Errorf("expected req_ prefix, got %q", seen)
	}
	if got := rec.Header().Get("X-Request-Id"); got != seen {
		t.Errorf("header %q does not match context value %q", got, seen)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req_upstream")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req_upstream" {
		t.Errorf("expected upstream ID preserved, got %q", seen)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "req_upstream" {
		t.Errorf("expected upstream ID echoed, got %q", got)
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	if got := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("expected empty ID for bare context, got %q", got)
	}
}
