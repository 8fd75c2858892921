package ideas

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/emalfdraw/pkg/handlers"
	"github.com/JaimeStill/emalfdraw/pkg/routes"
)

// Handler provides HTTP endpoints for idea operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "ideas"),
	}
}

// Routes returns the route group definition for idea endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/ideas",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/random", Handler: h.Random},
			{Method: "POST", Pattern: "", Handler: h.Submit},
		},
	}
}

// List returns every idea, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.sys.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, list)
}

// Random returns one idea drawn uniformly at random.
func (h *Handler) Random(w http.ResponseWriter, r *http.Request) {
	idea, err := h.sys.Random(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, idea)
}

// Submit processes a JSON body to add a new user-submitted idea.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var cmd SubmitCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusUnprocessableEntity,
			fmt.Errorf("%w: %w", ErrInvalidInput, err),
		)
		return
	}

	idea, err := h.sys.Submit(r.Context(), cmd.Text)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, idea)
}

// fail writes err with its mapped status. Store failures are already logged
// with detail by the catalog, so their bodies carry only the error kind.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	switch status {
	case http.StatusServiceUnavailable:
		err = ErrUnavailable
	case http.StatusInternalServerError:
		err = ErrUnknown
	}
	handlers.RespondError(w, h.logger, status, err)
}
