// Package middleware provides HTTP middleware for the HR portal API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/auth"
	"github.com/d9705996/hrportal/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller resolved from an access token.
// Role comes from the token claim, not a live row, so it can lag a role
// change until the next refresh.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

// RequireAuth validates the Bearer JWT in the Authorization header and
// injects an Identity into the request context. Missing, invalid, expired,
// or non-access tokens all fail with 401 before the handler body runs.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				respond.Error(w, apierr.Unauthorized("Authentication required"))
				return
			}

			claims, err := auth.ParseToken(token, secret)
			if err != nil {
				respond.Error(w, apierr.Unauthorized("Invalid or expired token"))
				return
			}
			if claims.TokenType != auth.TokenTypeAccess {
				respond.Error(w, apierr.Unauthorized("Invalid token type"))
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				respond.Error(w, apierr.Unauthorized("Invalid or expired token"))
				return
			}

			id := Identity{UserID: userID, Email: claims.Email, Role: claims.Role}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole checks that the authenticated caller's role meets the minimum
// under the EMPLOYEE < HR < ADMIN < SUPERADMIN order. Must be chained after
// RequireAuth.
func RequireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				respond.Error(w, apierr.Unauthorized("Authentication required"))
				return
			}
			if !auth.HasRole(id.Role, minimum) {
				respond.Error(w, apierr.Forbidden("Insufficient permissions. Required role: "+minimum))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireVendor admits only callers whose role is exactly VENDOR. The vendor
// role sits outside the hierarchy, so equality is the only check that makes
// sense here.
func RequireVendor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				respond.Error(w, apierr.Unauthorized("Authentication required"))
				return
			}
			if id.Role != model.RoleVendor {
				respond.Error(w, apierr.Forbidden("Vendor access only"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext extracts the caller Identity from the request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
