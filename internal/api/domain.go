package api

import (
	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/internal/infrastructure"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Ideas ideas.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	metrics := ideas.NewMetrics(runtime.Metrics, infrastructure.MetricsNamespace)

	ideasSystem := ideas.New(
		runtime.Store,
		runtime.Logger,
		metrics,
		ideas.Options{Timeout: runtime.Catalog.StoreTimeoutDuration()},
	)

	return &Domain{
		Ideas: ideasSystem,
	}
}
