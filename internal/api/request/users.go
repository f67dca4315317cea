package request

import (
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/model"
)

// Roles assignable through the admin endpoints. VENDOR accounts are
// provisioned out of band and never granted through the API.
var assignableRoles = []string{model.RoleEmployee, model.RoleHR, model.RoleAdmin, model.RoleSuperAdmin}

// UpdateProfile is the body for PATCH /api/users/profile.
type UpdateProfile struct {
	FullName    *string `json:"full_name,omitempty"`
	Department  *string `json:"department,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

func (b *UpdateProfile) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.FullName != nil && (*b.FullName == "" || len(*b.FullName) > 255) {
		errs.add("full_name", "Must be between 1 and 255 characters")
	}
	if b.Department != nil && len(*b.Department) > 100 {
		errs.add("department", "Must be at most 100 characters")
	}
	if b.DateOfBirth != nil && *b.DateOfBirth != "" {
		if !validRFC3339(*b.DateOfBirth) && !validDateOnly(*b.DateOfBirth) {
			errs.add("date_of_birth", "Must be an ISO date")
		}
	}
	return errs
}

// ChangePassword is the body for POST /api/users/profile/password.
type ChangePassword struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (b *ChangePassword) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.CurrentPassword == "" {
		errs.add("current_password", "Current password is required")
	}
	if len(b.NewPassword) < 6 {
		errs.add("new_password", "Password must be at least 6 characters")
	}
	if b.ConfirmPassword != b.NewPassword {
		errs.add("confirm_password", "Passwords do not match")
	}
	return errs
}

// UpdateUserByAdmin is the body for PATCH /api/users/{id}.
type UpdateUserByAdmin struct {
	FullName   *string `json:"full_name,omitempty"`
	Department *string `json:"department,omitempty"`
	Role       *string `json:"role,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func (b *UpdateUserByAdmin) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.FullName != nil && (*b.FullName == "" || len(*b.FullName) > 255) {
		errs.add("full_name", "Must be between 1 and 255 characters")
	}
	if b.Department != nil && len(*b.Department) > 100 {
		errs.add("department", "Must be at most 100 characters")
	}
	if b.Role != nil && !oneOf(*b.Role, assignableRoles) {
		errs.add("role", "Invalid role")
	}
	return errs
}

// UpdateUserRole is the body for PATCH /api/admin/users/{id}/role.
type UpdateUserRole struct {
	Role string `json:"role"`
}

func (b *UpdateUserRole) Validate() []apierr.FieldError {
	var errs fieldErrors
	if !oneOf(b.Role, assignableRoles) {
		errs.add("role", "Invalid role")
	}
	return errs
}

// UpdateUserStatus is the body for PATCH /api/admin/users/{id}/status.
type UpdateUserStatus struct {
	IsActive *bool `json:"is_active"`
}

func (b *UpdateUserStatus) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.IsActive == nil {
		errs.add("is_active", "is_active is required")
	}
	return errs
}
