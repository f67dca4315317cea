package middleware

import (
	"net/http"

	"github.com/d9705996/hrportal/internal/config"
)

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Requested-With"
	corsMaxAge  = "86400"
)

// CORS attaches cross-origin headers to every response, including error
// responses, and answers OPTIONS preflight requests with 204 and no body.
//
// An origin outside the allow-list gets no Access-Control-Allow-Origin
// header at all; the server still computes and returns the body, and the
// browser is the one that blocks the read. With a wildcard configuration
// credentials are never echoed.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			h := w.Header()
			if cfg.AllowsOrigin(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			} else if cfg.AllowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
