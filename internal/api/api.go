// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"net/http"

	"github.com/JaimeStill/emalfdraw/internal/config"
	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/internal/infrastructure"
	"github.com/JaimeStill/emalfdraw/pkg/middleware"
	"github.com/JaimeStill/emalfdraw/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and registers catalog seeding as a lifecycle ready hook.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	if err := registerSeeding(runtime, domain); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recoverer(runtime.Logger))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Metrics(runtime.Metrics, infrastructure.MetricsNamespace))
	m.Use(middleware.CORS(&cfg.API.CORS))

	return m, nil
}

// registerSeeding loads the default prompts and seeds the catalog once the
// store connections are up. Seeding failures are logged; the service keeps
// running.
func registerSeeding(runtime *Runtime, domain *Domain) error {
	if runtime.Catalog.SkipSeed {
		runtime.Logger.Info("catalog seeding disabled")
		return nil
	}

	texts, err := runtime.Catalog.LoadDefaults()
	if err != nil {
		return err
	}
	if texts == nil {
		texts = ideas.Defaults()
	}

	runtime.Lifecycle.OnReady(func(ctx context.Context) {
		n, err := domain.Ideas.SeedDefaults(ctx, texts)
		if err != nil {
			runtime.Logger.Error("catalog seeding failed", "error", err)
			return
		}
		runtime.Logger.Info("catalog seeded", "inserted", n)
	})

	return nil
}
