// Package handler contains HTTP handlers grouped by resource. Every handler
// follows the same shape: guard, validate, one or a few GORM queries, reshape
// to the snake_case wire contract, respond.
package handler

import (
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/middleware"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// identity resolves the authenticated caller or writes a 401. Handlers are
// always registered behind RequireAuth, so a missing identity means a wiring
// bug rather than a client fault, but the 401 keeps the failure visible.
func identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, apierr.Unauthorized(""))
	}
	return id, ok
}

// timePtr formats an optional timestamp as RFC3339 or JSON null.
func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// userBrief is the embedded user reference carried on related resources.
func userBrief(u *model.User) any {
	if u == nil {
		return nil
	}
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"full_name": u.FullName,
	}
}

func userJSON(u *model.User) map[string]any {
	return map[string]any{
		"id":            u.ID,
		"employee_id":   u.EmployeeID,
		"email":         u.Email,
		"full_name":     u.FullName,
		"role":          u.Role,
		"department":    u.Department,
		"date_of_birth": timePtr(u.DateOfBirth),
		"is_active":     u.IsActive,
		"created_at":    u.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":    u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// isStaff reports whether role sits in the HR-or-above band.
func isStaff(role string) bool {
	switch role {
	case model.RoleHR, model.RoleAdmin, model.RoleSuperAdmin:
		return true
	}
	return false
}

// notify inserts one notification row inside the given handle (which may be
// a transaction).
func notify(tx *gorm.DB, userID uint, kind, title, message string, entityType string, entityID uint) error {
	n := model.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if entityType != "" {
		n.RelatedEntityType = &entityType
		n.RelatedEntityID = &entityID
	}
	return tx.Create(&n).Error
}

// audit records one privileged action inside the given handle. Entries feed
// the admin audit trail and the per-feedback timeline.
func audit(tx *gorm.DB, userID uint, action, entityType string, entityID uint, details string) error {
	entry := model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityType: &entityType,
		EntityID:   &entityID,
	}
	if details != "" {
		entry.Details = &details
	}
	return tx.Create(&entry).Error
}

// listEnvelope is the standard paginated list response shape.
func listEnvelope(key string, items any, total int64, skip, limit int) map[string]any {
	return map[string]any{
		key:     items,
		"total": total,
		"skip":  skip,
		"limit": limit,
	}
}
