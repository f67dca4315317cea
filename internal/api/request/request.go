// Package request defines typed request bodies and their validators. Each
// type's Validate method aggregates every violated field into one error so
// clients see the full list in a single round trip.
package request

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/d9705996/hrportal/internal/apierr"
)

// Decode parses the JSON body into dst and runs its validator. Malformed
// JSON and failed validation both surface as 400s.
func Decode(r *http.Request, dst Validatable) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierr.BadRequest("Invalid JSON body")
	}
	if fields := dst.Validate(); len(fields) > 0 {
		return apierr.Validation(fields)
	}
	return nil
}

// Validatable is any request body that can enumerate its own field errors.
type Validatable interface {
	Validate() []apierr.FieldError
}

// fieldErrors collects violations as validation walks the fields.
type fieldErrors []apierr.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, apierr.FieldError{Field: field, Message: message})
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	dot := strings.LastIndex(s, ".")
	return at > 0 && dot > at+1 && dot < len(s)-1
}

func oneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

func validRFC3339(s string) bool {
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func validDateOnly(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
