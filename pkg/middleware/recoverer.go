package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/JaimeStill/emalfdraw/pkg/handlers"
)

// Recoverer returns middleware that converts handler panics into a 500
// response and logs the stack.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error(
						"panic recovered",
						"error", rec,
						"method", r.Method,
						"uri", r.URL.RequestURI(),
						"stack", string(debug.Stack()),
					)
					handlers.RespondJSON(
						w,
						http.StatusInternalServerError,
						handlers.ErrorResponse{Detail: "internal server error"},
					)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
