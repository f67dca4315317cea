// Package apierr defines the error taxonomy every handler funnels failures
// through: validation (400), unauthorized (401), forbidden (403), not found
// (404), conflict (409), and an unclassified fallback (500).
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError describes one violated rule on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified API error carrying its HTTP status.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string { return e.Message }

// Validation builds a 400 error enumerating every violated field.
func Validation(fields []FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Validation error", Fields: fields}
}

// BadRequest builds a 400 error with a plain message.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized builds a 401 error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden builds a 403 error.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Insufficient permissions"
	}
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound builds a 404 error naming the missing entity.
func NotFound(entity string) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("%s not found", entity)}
}

// Conflict builds a 409 error.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// From classifies err. Already-classified errors pass through; anything else
// becomes a 500 with a generic message so internal detail never leaks.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
}
