package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// AnyOrigin in Origins allows requests from every origin.
const AnyOrigin = "*"

// CORS returns middleware that applies CORS headers based on the config.
// Passes through without headers when disabled or no origins are configured.
// With AnyOrigin configured, the response allows "*", or echoes the request
// origin when credentials are allowed, since browsers reject "*" with credentials.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	wildcard := slices.Contains(cfg.Origins, AnyOrigin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || len(cfg.Origins) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if allow := allowOrigin(cfg, wildcard, origin); allow != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allow)
				if allow != AnyOrigin {
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))

				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}

				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allowOrigin(cfg *CORSConfig, wildcard bool, origin string) string {
	switch {
	case wildcard && cfg.AllowCredentials:
		return origin
	case wildcard:
		return AnyOrigin
	case origin != "" && slices.Contains(cfg.Origins, origin):
		return origin
	default:
		return ""
	}
}
