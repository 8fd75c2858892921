package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/pkg/handlers"
	"github.com/JaimeStill/emalfdraw/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	status := newStatusHandler(domain.Ideas, runtime.Logger)

	routes.Register(
		mux,
		status.routes(),
		domain.Ideas.Handler().Routes(),
	)
}

// HealthResponse reports store connectivity and catalog size.
type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database,omitempty"`
	IdeasCount *int   `json:"ideas_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

type statusHandler struct {
	ideas  ideas.System
	logger *slog.Logger
}

func newStatusHandler(sys ideas.System, logger *slog.Logger) *statusHandler {
	return &statusHandler{
		ideas:  sys,
		logger: logger.With("handler", "status"),
	}
}

func (h *statusHandler) routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{$}", Handler: h.root},
			{Method: "GET", Pattern: "/health", Handler: h.health},
		},
	}
}

func (h *statusHandler) root(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "EmalfDraw API is running!",
	})
}

func (h *statusHandler) health(w http.ResponseWriter, r *http.Request) {
	n, err := h.ideas.Count(r.Context())
	if err != nil {
		h.logger.Warn("health check failed", "error", err)
		handlers.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Error:  err.Error(),
		})
		return
	}

	handlers.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Database:   "connected",
		IdeasCount: &n,
	})
}
