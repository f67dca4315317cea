package handler

import (
	"errors"
	"net/http"

	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/auth"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// UserHandler handles /api/users/* routes.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var u model.User
	if err := h.db.WithContext(r.Context()).First(&u, id.UserID).Error; err != nil {
		respond.Error(w, apierr.NotFound("User"))
		return
	}
	respond.JSON(w, http.StatusOK, userJSON(&u))
}

// UpdateProfile handles PATCH /api/users/profile. Only self-service fields
// are writable here; role and activity belong to the admin endpoints.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.UpdateProfile
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var u model.User
	if err := h.db.WithContext(ctx).First(&u, id.UserID).Error; err != nil {
		respond.Error(w, apierr.NotFound("User"))
		return
	}

	updates := map[string]any{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			respond.Error(w, apierr.BadRequest("Invalid date_of_birth"))
			return
		}
		updates["date_of_birth"] = dob
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&u).Updates(updates).Error; err != nil {
			respond.Error(w, err)
			return
		}
	}
	respond.JSON(w, http.StatusOK, userJSON(&u))
}

// ChangePassword handles POST /api/users/profile/password. A wrong current
// password is a 403, not a 401: the caller is authenticated, just not
// entitled to this change.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.ChangePassword
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var u model.User
	if err := h.db.WithContext(ctx).First(&u, id.UserID).Error; err != nil {
		respond.Error(w, apierr.NotFound("User"))
		return
	}
	if !auth.VerifyPassword(req.CurrentPassword, u.PasswordHash) {
		respond.Error(w, apierr.Forbidden("Current password is incorrect"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.db.WithContext(ctx).Model(&u).Update("password_hash", hash).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Password updated successfully")
}

// List handles GET /api/users (HR+). Paginated, with an independent total.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := respond.Pagination(r)
	ctx := r.Context()

	q := h.db.WithContext(ctx).Model(&model.User{})
	if dept := r.URL.Query().Get("department"); dept != "" {
		q = q.Where("department = ?", dept)
	}
	if role := r.URL.Query().Get("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var users []model.User
	if err := q.Order("id").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		respond.Error(w, err)
		return
	}

	items := make([]map[string]any, len(users))
	for i := range users {
		items[i] = userJSON(&users[i])
	}
	respond.JSON(w, http.StatusOK, listEnvelope("users", items, total, skip, limit))
}

// Get handles GET /api/users/{id} (HR+).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var u model.User
	if err := h.db.WithContext(r.Context()).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, apierr.NotFound("User"))
			return
		}
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, userJSON(&u))
}

// Update handles PATCH /api/users/{id} (ADMIN+). Role changes through this
// endpoint are capped at the caller's own level; only the dedicated
// SUPERADMIN endpoint can cross that line.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	userID, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.UpdateUserByAdmin
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var u model.User
	if err := h.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, apierr.NotFound("User"))
			return
		}
		respond.Error(w, err)
		return
	}

	updates := map[string]any{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Role != nil {
		if !auth.HasRole(id.Role, *req.Role) {
			respond.Error(w, apierr.Forbidden("Cannot grant a role above your own"))
			return
		}
		updates["role"] = *req.Role
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&u).Updates(updates).Error; err != nil {
			respond.Error(w, err)
			return
		}
	}
	respond.JSON(w, http.StatusOK, userJSON(&u))
}
