package infrastructure_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/emalfdraw/internal/config"
	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/internal/infrastructure"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func loadConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("EMALFDRAW_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("EMALFDRAW_DB_DRIVER", "sqlite")
	t.Setenv("EMALFDRAW_DB_PATH", filepath.Join(dir, "ideas.db"))
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestNewSQLite(t *testing.T) {
	infra, err := infrastructure.NewWithLogger(loadConfig(t, nil), logger)
	if err != nil {
		t.Fatalf("NewWithLogger() error = %v", err)
	}
	defer infra.Close()

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Metrics == nil {
		t.Error("Metrics is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage != nil {
		t.Error("Storage should be nil for the database store")
	}

	n, err := infra.Store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("count: got %d, want 0", n)
	}
}

func TestNewRedisIsLazy(t *testing.T) {
	infra, err := infrastructure.NewWithLogger(loadConfig(t, map[string]string{
		"EMALFDRAW_CATALOG_STORE": config.StoreRedis,
		"EMALFDRAW_REDIS_ADDR":    "127.0.0.1:1",
	}), logger)
	if err != nil {
		t.Fatalf("NewWithLogger() error = %v", err)
	}
	defer infra.Close()

	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Database != nil {
		t.Error("Database should be nil for the redis store")
	}
}

func TestBreakerWrapsStore(t *testing.T) {
	infra, err := infrastructure.NewWithLogger(loadConfig(t, map[string]string{
		"EMALFDRAW_CATALOG_STORE":   config.StoreRedis,
		"EMALFDRAW_REDIS_ADDR":      "127.0.0.1:1",
		"EMALFDRAW_BREAKER_ENABLED": "true",
	}), logger)
	if err != nil {
		t.Fatalf("NewWithLogger() error = %v", err)
	}
	defer infra.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// the default breaker needs five requests before it can open
	for range 5 {
		infra.Store.Count(ctx)
	}

	start := time.Now()
	_, err = infra.Store.Count(ctx)
	if !errors.Is(err, ideas.ErrUnavailable) {
		t.Fatalf("Count() error = %v, want ErrUnavailable", err)
	}
	if time.Since(start) > time.Second {
		t.Error("open breaker should fail fast")
	}
}
