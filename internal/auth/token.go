// Package auth provides password hashing, role ordering, and JWT token
// issuance and validation. Tokens are stateless: validity is determined
// entirely by signature and expiry, never by a storage lookup.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/d9705996/hrportal/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Token type claim values.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned when a token fails signature, expiry, or
// claim checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the custom claim set carried inside portal tokens. Role is
// embedded so authorization checks need no database round-trip; it goes
// stale until the next refresh, which is an accepted trade-off.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id stored in the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token subject: %w", err)
	}
	return uint(id), nil
}

// IssueAccessToken creates a signed short-lived access token for u.
func IssueAccessToken(u *model.User, secret string, ttl time.Duration) (string, error) {
	return issue(u, TokenTypeAccess, secret, ttl)
}

// IssueRefreshToken creates a signed long-lived refresh token for u.
// Refresh tokens are only ever exchanged for new access tokens.
func IssueRefreshToken(u *model.User, secret string, ttl time.Duration) (string, error) {
	return issue(u, TokenTypeRefresh, secret, ttl)
}

func issue(u *model.User, tokenType, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     u.Email,
		Role:      u.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "hrportal",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token string and returns its Claims.
// Returns ErrInvalidToken if the token is malformed, expired, or signed
// with a different key.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
