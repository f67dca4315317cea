package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/auth"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// AuthHandler handles /api/auth/* routes.
type AuthHandler struct {
	db         *gorm.DB
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtSecret string, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{db: db, jwtSecret: jwtSecret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Login handles POST /api/auth/login. Unknown email and wrong password
// return the same message so responses don't reveal which accounts exist.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.Login
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	var u model.User
	err := h.db.WithContext(r.Context()).Where("email = ?", req.Email).First(&u).Error
	if err != nil {
		respond.Error(w, apierr.Unauthorized("Invalid credentials"))
		return
	}
	if !auth.VerifyPassword(req.Password, u.PasswordHash) {
		respond.Error(w, apierr.Unauthorized("Invalid credentials"))
		return
	}
	if !u.IsActive {
		respond.Error(w, apierr.Forbidden("Account is deactivated"))
		return
	}

	access, err := auth.IssueAccessToken(&u, h.jwtSecret, h.accessTTL)
	if err != nil {
		respond.Error(w, err)
		return
	}
	refresh, err := auth.IssueRefreshToken(&u, h.jwtSecret, h.refreshTTL)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"user":          userJSON(&u),
	})
}

// Register handles POST /api/auth/register. New accounts always start as
// EMPLOYEE; role elevation is a separate admin operation.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.Register
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var count int64
	if err := h.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? OR employee_id = ?", req.Email, req.EmployeeID).
		Count(&count).Error; err != nil {
		respond.Error(w, err)
		return
	}
	if count > 0 {
		respond.Error(w, apierr.Conflict("Email or employee ID already registered"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Error(w, err)
		return
	}

	u := model.User{
		EmployeeID:   req.EmployeeID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         model.RoleEmployee,
		Department:   req.Department,
		IsActive:     true,
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			respond.Error(w, apierr.BadRequest("Invalid date_of_birth"))
			return
		}
		u.DateOfBirth = &dob
	}
	if err := h.db.WithContext(ctx).Create(&u).Error; err != nil {
		// Covers the race where the same email or employee id registers
		// between the count check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = apierr.Conflict("Email or employee ID already registered")
		}
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, userJSON(&u))
}

// Refresh handles POST /api/auth/refresh. A valid refresh token is exchanged
// for a new access token only; the refresh token itself is not rotated.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.Refresh
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	claims, err := auth.ParseToken(req.RefreshToken, h.jwtSecret)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		respond.Error(w, apierr.Unauthorized("Invalid or expired refresh token"))
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		respond.Error(w, apierr.Unauthorized("Invalid or expired refresh token"))
		return
	}

	// Re-fetch the row so a deactivation or role change takes effect here.
	var u model.User
	if err := h.db.WithContext(r.Context()).First(&u, userID).Error; err != nil {
		respond.Error(w, apierr.Unauthorized("Invalid or expired refresh token"))
		return
	}
	if !u.IsActive {
		respond.Error(w, apierr.Forbidden("Account is deactivated"))
		return
	}

	access, err := auth.IssueAccessToken(&u, h.jwtSecret, h.accessTTL)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"access_token": access,
		"token_type":   "bearer",
	})
}

// Me handles GET /api/auth/me with a live re-fetch of the caller's row.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var u model.User
	if err := h.db.WithContext(r.Context()).First(&u, id.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, apierr.NotFound("User"))
			return
		}
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, userJSON(&u))
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
