package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reelfeed/reelfeed/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.TMDB.APIKey = "test-key"

	server, err := NewServer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return server
}

func TestServer_HealthCheck(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestServer_Status(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if body["provider"] != "tmdb" {
		t.Errorf("provider = %v, want tmdb", body["provider"])
	}
	if body["configured"] != true {
		t.Errorf("configured = %v, want true", body["configured"])
	}
}

func TestServer_RoutesRegistered(t *testing.T) {
	server := newTestServer(t)

	// Bad input on registered routes returns 400, never 404.
	paths := []string{
		"/api/v1/movie/abc",
		"/api/v1/tv/abc",
		"/api/v1/person/abc",
		"/api/v1/collection/abc",
		"/api/v1/genres/abc/feed",
		"/api/v1/search",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		server.Echo().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestServer_StartRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	server, err := NewServer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	if err := server.Start(":0"); err == nil {
		t.Fatal("Start() without an API key must fail")
	}
}
