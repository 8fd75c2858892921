package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/emalfdraw/internal/config"
	"github.com/JaimeStill/emalfdraw/internal/infrastructure"
)

func testInfra(t *testing.T) (*config.Config, *infrastructure.Infrastructure) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("EMALFDRAW_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("EMALFDRAW_DB_DRIVER", "sqlite")
	t.Setenv("EMALFDRAW_DB_PATH", filepath.Join(dir, "ideas.db"))

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	infra, err := infrastructure.NewWithLogger(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("infrastructure.NewWithLogger() error = %v", err)
	}
	return cfg, infra
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNativeRoutes(t *testing.T) {
	cfg, infra := testInfra(t)

	modules, err := NewModules(infra, cfg)
	if err != nil {
		t.Fatalf("NewModules() error = %v", err)
	}
	router := buildRouter(infra)
	modules.Mount(router)

	if rec := get(router, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz: got %d", rec.Code)
	}
	if rec := get(router, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before startup: got %d, want 503", rec.Code)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(5 * time.Second) })
	infra.Lifecycle.WaitForStartup()

	if rec := get(router, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("readyz after startup: got %d", rec.Code)
	}

	if rec := get(router, "/api/ideas"); rec.Code != http.StatusOK {
		t.Errorf("api ideas: got %d", rec.Code)
	}

	rec := get(router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"emalfdraw_http_requests_total",
		"emalfdraw_ideas_seeded_total",
		"go_goroutines",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics missing %s", name)
		}
	}
}
