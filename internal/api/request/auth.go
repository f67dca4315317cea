package request

import "github.com/d9705996/hrportal/internal/apierr"

// Login is the body for POST /api/auth/login.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b *Login) Validate() []apierr.FieldError {
	var errs fieldErrors
	if !validEmail(b.Email) {
		errs.add("email", "Invalid email format")
	}
	if b.Password == "" {
		errs.add("password", "Password is required")
	}
	return errs
}

// Register is the body for POST /api/auth/register.
type Register struct {
	EmployeeID      string  `json:"employee_id"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	Department      *string `json:"department,omitempty"`
	DateOfBirth     *string `json:"date_of_birth,omitempty"`
}

func (b *Register) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.EmployeeID == "" {
		errs.add("employee_id", "Employee ID is required")
	}
	if b.FullName == "" {
		errs.add("full_name", "Full name is required")
	}
	if !validEmail(b.Email) {
		errs.add("email", "Invalid email format")
	}
	if len(b.Password) < 6 {
		errs.add("password", "Password must be at least 6 characters")
	}
	if b.ConfirmPassword != b.Password {
		errs.add("confirm_password", "Passwords do not match")
	}
	if b.DateOfBirth != nil && *b.DateOfBirth != "" {
		if !validRFC3339(*b.DateOfBirth) && !validDateOnly(*b.DateOfBirth) {
			errs.add("date_of_birth", "Must be an ISO date")
		}
	}
	return errs
}

// Refresh is the body for POST /api/auth/refresh.
type Refresh struct {
	RefreshToken string `json:"refresh_token"`
}

func (b *Refresh) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.RefreshToken == "" {
		errs.add("refresh_token", "Refresh token is required")
	}
	return errs
}
