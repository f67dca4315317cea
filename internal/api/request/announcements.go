package request

import "github.com/d9705996/hrportal/internal/apierr"

// AnnouncementCategories lists the accepted announcement categories.
var AnnouncementCategories = []string{"COMPANY_NEWS", "HR_POLICY", "EVENT", "BENEFIT", "TRAINING", "OTHER"}

// CreateAnnouncement is the body for POST /api/announcements.
type CreateAnnouncement struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Category  string  `json:"category,omitempty"`
	IsPinned  bool    `json:"is_pinned,omitempty"`
	ExpiresAt *string `json:"expires_at,omitempty"`
}

func (b *CreateAnnouncement) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Title == "" || len(b.Title) > 255 {
		errs.add("title", "Must be between 1 and 255 characters")
	}
	if b.Content == "" {
		errs.add("content", "Content is required")
	}
	if b.Category == "" {
		b.Category = "OTHER"
	} else if !oneOf(b.Category, AnnouncementCategories) {
		errs.add("category", "Invalid category")
	}
	if b.ExpiresAt != nil && !validRFC3339(*b.ExpiresAt) {
		errs.add("expires_at", "Must be an RFC3339 timestamp")
	}
	return errs
}

// UpdateAnnouncement is the body for PATCH /api/announcements/{id}.
// ExpiresAt distinguishes absent (no change) from explicit null (clear).
type UpdateAnnouncement struct {
	Title        *string `json:"title,omitempty"`
	Content      *string `json:"content,omitempty"`
	Category     *string `json:"category,omitempty"`
	IsPinned     *bool   `json:"is_pinned,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	ExpiresAt    *string `json:"expires_at,omitempty"`
	ClearsExpiry bool    `json:"-"`
}

func (b *UpdateAnnouncement) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Title != nil && (*b.Title == "" || len(*b.Title) > 255) {
		errs.add("title", "Must be between 1 and 255 characters")
	}
	if b.Content != nil && *b.Content == "" {
		errs.add("content", "Content cannot be empty")
	}
	if b.Category != nil && !oneOf(*b.Category, AnnouncementCategories) {
		errs.add("category", "Invalid category")
	}
	if b.ExpiresAt != nil && *b.ExpiresAt != "" && !validRFC3339(*b.ExpiresAt) {
		errs.add("expires_at", "Must be an RFC3339 timestamp")
	}
	return errs
}
