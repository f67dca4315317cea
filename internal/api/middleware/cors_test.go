package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/d9705996/hrportal/internal/api/middleware"
	"github.com/d9705996/hrportal/internal/config"
	"github.com/stretchr/testify/assert"
)

func corsChain(cfg config.CORSConfig) http.Handler {
	return middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
}

func TestCORS_AllowedOriginEchoed(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}}

	req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	corsChain(cfg).ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestCORS_UnknownOriginGetsNoHeader(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}}

	req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	corsChain(cfg).ServeHTTP(w, req)

	// The body is still served; the browser does the blocking.
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	cfg := config.CORSConfig{AllowAll: true}

	req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	corsChain(cfg).ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}}

	req := httptest.NewRequest(http.MethodOptions, "/api/feedback", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	corsChain(cfg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}
