// Package health exposes the /api/health, /api/version and /api/ready
// HTTP handlers.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/version"
)

// Pinger is implemented by anything that can check a downstream dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for the health, version and ready endpoints.
type Handler struct {
	db          Pinger
	environment string
	startTime   time.Time
}

// New creates a Handler. db may be nil during startup before the connection
// is established; in that case /ready will return 503 immediately.
func New(db Pinger, environment string) *Handler {
	return &Handler{db: db, environment: environment, startTime: time.Now()}
}

// ServeHealth handles GET /api/health.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "hr-portal-api",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ServeVersion handles GET /api/version.
func (h *Handler) ServeVersion(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"version":     version.Version,
		"commit":      version.Commit,
		"build_date":  version.Date,
		"api":         "v1",
		"environment": h.environment,
	})
}

// ServeReady handles GET /api/ready.
// Returns 200 when the database is reachable; 503 otherwise.
func (h *Handler) ServeReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.Message(w, http.StatusServiceUnavailable, "database connection is not initialised")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respond.Message(w, http.StatusServiceUnavailable, "database is unreachable")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}
