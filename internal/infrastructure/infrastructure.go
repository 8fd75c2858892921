// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, metrics, the idea store and its
// connections) that domain systems require.
package infrastructure

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/emalfdraw/internal/config"
	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/internal/ideas/redisstore"
	"github.com/JaimeStill/emalfdraw/internal/ideas/sqlstore"
	"github.com/JaimeStill/emalfdraw/pkg/database"
	"github.com/JaimeStill/emalfdraw/pkg/lifecycle"
	"github.com/JaimeStill/emalfdraw/pkg/storage"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "emalfdraw"

// Infrastructure holds the core systems required by all domain modules.
// Database and Storage are nil when the configured store does not use them.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Metrics   *prometheus.Registry
	Database  database.System
	Storage   storage.System
	Store     ideas.Store
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// SQLite schemas are applied here, before any hook runs.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	return NewWithLogger(cfg, logger)
}

// NewWithLogger is New with a caller-provided logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Metrics:   reg,
	}

	store, err := infra.openStore(cfg)
	if err != nil {
		infra.Close()
		return nil, err
	}

	if cfg.Catalog.Breaker.Enabled {
		b := cfg.Catalog.Breaker
		store = ideas.WithBreaker(store, ideas.BreakerSettings{
			Name:             cfg.Catalog.Store,
			MaxRequests:      b.MaxRequests,
			Interval:         b.IntervalDuration(),
			Timeout:          b.TimeoutDuration(),
			FailureThreshold: b.FailureRatio,
			MinRequests:      b.MinRequests,
		}, logger)
	}

	infra.Store = store
	return infra, nil
}

func (i *Infrastructure) openStore(cfg *config.Config) (ideas.Store, error) {
	switch {
	case cfg.UsesRedis():
		kv, err := storage.New(&cfg.Redis, i.Logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		i.Storage = kv
		return redisstore.New(kv.Client(), kv.Prefix(), i.Logger), nil

	default:
		db, err := database.New(&cfg.Database, i.Logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		i.Database = db

		dialect := sqlstore.Postgres
		if db.Driver() == database.DriverSQLite {
			dialect = sqlstore.SQLite
			if err := sqlstore.MigrateSQLite(db.Connection()); err != nil {
				return nil, fmt.Errorf("sqlite migrate failed: %w", err)
			}
		}

		return sqlstore.New(db.Connection(), dialect, i.Logger)
	}
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}

// Close releases connections directly. It is for short-lived callers, such
// as the admin CLI, that never call Start.
func (i *Infrastructure) Close() error {
	var errs []error
	if i.Database != nil {
		errs = append(errs, i.Database.Close())
	}
	if i.Storage != nil {
		errs = append(errs, i.Storage.Close())
	}
	return errors.Join(errs...)
}
