package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/emalfdraw/internal/api"
	"github.com/JaimeStill/emalfdraw/internal/config"
	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/internal/infrastructure"
	"github.com/JaimeStill/emalfdraw/pkg/module"
)

func testConfig(t *testing.T, extra map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("EMALFDRAW_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("EMALFDRAW_DB_DRIVER", "sqlite")
	t.Setenv("EMALFDRAW_DB_PATH", filepath.Join(dir, "ideas.db"))
	for k, v := range extra {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func setup(t *testing.T, cfg *config.Config) (*infrastructure.Infrastructure, http.Handler) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		t.Fatalf("infrastructure.NewWithLogger() error = %v", err)
	}

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(5 * time.Second) })
	infra.Lifecycle.WaitForStartup()

	router := module.NewRouter()
	router.Mount(m)
	return infra, router
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestNewModule(t *testing.T) {
	cfg := testConfig(t, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		t.Fatalf("infrastructure.NewWithLogger() error = %v", err)
	}
	defer infra.Close()

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := testConfig(t, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		t.Fatalf("infrastructure.NewWithLogger() error = %v", err)
	}
	defer infra.Close()

	runtime := api.NewRuntime(cfg, infra)
	if runtime.Store == nil {
		t.Error("runtime store is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Storage != nil {
		t.Error("runtime storage should be nil for the database store")
	}
	if runtime.Catalog.StoreTimeoutDuration() != 5*time.Second {
		t.Errorf("store timeout: got %v", runtime.Catalog.StoreTimeoutDuration())
	}
}

func TestRootAndHealth(t *testing.T) {
	_, h := setup(t, testConfig(t, nil))

	rec := do(t, h, http.MethodGet, "/api/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("root status: got %d", rec.Code)
	}
	root := decode[map[string]string](t, rec)
	if root["message"] != "EmalfDraw API is running!" {
		t.Errorf("root message: got %q", root["message"])
	}

	rec = do(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: got %d", rec.Code)
	}
	health := decode[api.HealthResponse](t, rec)
	if health.Status != "healthy" || health.Database != "connected" {
		t.Errorf("health: got %+v", health)
	}
	if health.IdeasCount == nil || *health.IdeasCount != len(ideas.Defaults()) {
		t.Errorf("ideas count: got %v, want %d", health.IdeasCount, len(ideas.Defaults()))
	}
}

func TestSeedingOnStartup(t *testing.T) {
	_, h := setup(t, testConfig(t, nil))

	rec := do(t, h, http.MethodGet, "/api/ideas", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: got %d", rec.Code)
	}
	list := decode[[]ideas.Idea](t, rec)
	if len(list) != len(ideas.Defaults()) {
		t.Fatalf("seeded: got %d, want %d", len(list), len(ideas.Defaults()))
	}
	for _, idea := range list {
		if idea.UserSubmitted {
			t.Errorf("seeded idea %q marked user submitted", idea.Text)
		}
	}
}

func TestSeedingFromDefaultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.txt")
	content := "# house prompts\nDraw a lighthouse\n\nDraw a LIGHTHOUSE\nDraw a windmill\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, h := setup(t, testConfig(t, map[string]string{
		"EMALFDRAW_CATALOG_DEFAULTS_FILE": path,
	}))

	list := decode[[]ideas.Idea](t, do(t, h, http.MethodGet, "/api/ideas", ""))
	if len(list) != 2 {
		t.Fatalf("seeded: got %d, want 2", len(list))
	}
}

func TestSkipSeed(t *testing.T) {
	_, h := setup(t, testConfig(t, map[string]string{
		"EMALFDRAW_CATALOG_SKIP_SEED": "true",
	}))

	rec := do(t, h, http.MethodGet, "/api/ideas", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("list body: got %s, want []", body)
	}

	rec = do(t, h, http.MethodGet, "/api/ideas/random", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("random on empty catalog: got %d, want 404", rec.Code)
	}
}

func TestSubmitFlow(t *testing.T) {
	_, h := setup(t, testConfig(t, map[string]string{
		"EMALFDRAW_CATALOG_SKIP_SEED": "true",
	}))

	rec := do(t, h, http.MethodPost, "/api/ideas", `{"text":"  Draw a cat wearing a hat  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status: got %d body %s", rec.Code, rec.Body.String())
	}
	idea := decode[ideas.Idea](t, rec)
	if idea.Text != "Draw a cat wearing a hat" || !idea.UserSubmitted {
		t.Errorf("submitted idea: got %+v", idea)
	}

	rec = do(t, h, http.MethodPost, "/api/ideas", `{"text":"DRAW A CAT WEARING A HAT"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status: got %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/ideas", `{"text":"   "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank status: got %d, want 422", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/ideas", `{"text":"`+strings.Repeat("x", 201)+`"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("too long status: got %d, want 422", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/ideas/random", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("random status: got %d", rec.Code)
	}
	drawn := decode[ideas.Idea](t, rec)
	if drawn.ID != idea.ID {
		t.Errorf("random: got %s, want %s", drawn.ID, idea.ID)
	}
}
