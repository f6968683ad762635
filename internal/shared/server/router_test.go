package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tirescan-backend/internal/services/health"
	"tirescan-backend/internal/shared/config"
	"tirescan-backend/internal/shops"
)

func TestAddr(t *testing.T) {
	tests := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range tests {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHealthReportsChecks(t *testing.T) {
	r := NewRouter(RouterDeps{
		Config: config.Config{Env: "test"},
		Health: health.NewService(map[string]health.Check{
			"db":    func(ctx context.Context) error { return nil },
			"cache": func(ctx context.Context) error { return errors.New("down") },
		}),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var payload struct {
		OK     bool              `json:"ok"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.OK || payload.Checks["db"] != "ok" || payload.Checks["cache"] != "down" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestRouterServesMetricsAndShops(t *testing.T) {
	r := NewRouter(RouterDeps{
		Config:       config.Config{Env: "test"},
		ShopsHandler: shops.NewHandler(shops.NewService(shops.NewMemoryRepo())),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "analysis_started_total") {
		t.Fatalf("unexpected metrics response %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from shops list, got %d", rec.Code)
	}
}
