// Package respond provides JSON rendering helpers, the single error mapper,
// and query parsing shared by all route handlers.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/d9705996/hrportal/internal/apierr"
	"gorm.io/gorm"
)

// Pagination defaults and ceiling for list endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// errorBody is the standard error envelope: {"message": ...} plus a
// field-level "errors" list for validation failures.
type errorBody struct {
	Message string              `json:"message"`
	Errors  []apierr.FieldError `json:"errors,omitempty"`
}

// JSON writes data as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "err", err)
	}
}

// Message writes a {"message": ...} body with the given status code.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Error maps any error onto the standard error envelope. Every handler
// failure, whether from a guard, a validator, or persistence, goes through
// here so clients always get a parseable JSON body. Unique-constraint
// violations become a 409: two requests can pass the same existence check
// and race to insert, and the loser must not surface as a 500.
func Error(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = apierr.Conflict("Resource already exists")
	}
	apiErr := apierr.From(err)
	if apiErr.Status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
	}
	JSON(w, apiErr.Status, errorBody{Message: apiErr.Message, Errors: apiErr.Fields})
}

// Pagination extracts skip/limit query parameters, applying defaults and
// clamping limit to [1, MaxLimit]. Non-numeric values fall back to defaults.
func Pagination(r *http.Request) (skip, limit int) {
	skip = queryInt(r, "skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit = queryInt(r, "limit", DefaultLimit)
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}

// QueryBool interprets "true" and "1" as true; anything else as def.
func QueryBool(r *http.Request, key string, def bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}

// PathID coerces the named path parameter to a numeric id. A non-numeric
// value fails with a 400 before any persistence call is attempted.
func PathID(r *http.Request, name string) (uint, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apierr.BadRequest("invalid " + name)
	}
	return uint(id), nil
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
