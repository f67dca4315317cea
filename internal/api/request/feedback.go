package request

import (
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/model"
)

// FeedbackCategories lists the accepted feedback categories.
var FeedbackCategories = []string{"GENERAL", "WORKPLACE", "MANAGEMENT", "BENEFITS", "CULTURE", "OTHER"}

// FeedbackStatuses lists the accepted feedback workflow states.
var FeedbackStatuses = []string{
	model.FeedbackSubmitted,
	model.FeedbackUnderReview,
	model.FeedbackInProgress,
	model.FeedbackResolved,
	model.FeedbackClosed,
}

// FeedbackPriorities lists the accepted feedback priorities.
var FeedbackPriorities = []string{
	model.PriorityLow,
	model.PriorityMedium,
	model.PriorityHigh,
	model.PriorityUrgent,
}

// CreateFeedback is the body for POST /api/feedback.
type CreateFeedback struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
	Attachments []uint `json:"attachments,omitempty"`
}

func (b *CreateFeedback) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Title == "" || len(b.Title) > 255 {
		errs.add("title", "Must be between 1 and 255 characters")
	}
	if b.Description == "" {
		errs.add("description", "Description is required")
	}
	if b.Category == "" {
		b.Category = "GENERAL"
	} else if !oneOf(b.Category, FeedbackCategories) {
		errs.add("category", "Invalid category")
	}
	if b.Priority == "" {
		b.Priority = model.PriorityMedium
	} else if !oneOf(b.Priority, FeedbackPriorities) {
		errs.add("priority", "Invalid priority")
	}
	return errs
}

// UpdateFeedback is the body for PATCH /api/feedback/{id}.
type UpdateFeedback struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

func (b *UpdateFeedback) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Title != nil && (*b.Title == "" || len(*b.Title) > 255) {
		errs.add("title", "Must be between 1 and 255 characters")
	}
	if b.Description != nil && *b.Description == "" {
		errs.add("description", "Description cannot be empty")
	}
	if b.Category != nil && !oneOf(*b.Category, FeedbackCategories) {
		errs.add("category", "Invalid category")
	}
	return errs
}

// UpdateFeedbackStatus is the body for PATCH /api/feedback/{id}/status.
type UpdateFeedbackStatus struct {
	Status     string `json:"status"`
	AssignedTo *uint  `json:"assigned_to,omitempty"`
}

func (b *UpdateFeedbackStatus) Validate() []apierr.FieldError {
	var errs fieldErrors
	if !oneOf(b.Status, FeedbackStatuses) {
		errs.add("status", "Invalid status")
	}
	if b.AssignedTo != nil && *b.AssignedTo == 0 {
		errs.add("assigned_to", "Must be a positive integer")
	}
	return errs
}

// AddComment is the body for POST /api/feedback/{id}/comments.
type AddComment struct {
	Comment     string `json:"comment"`
	IsInternal  bool   `json:"is_internal,omitempty"`
	Attachments []uint `json:"attachments,omitempty"`
}

func (b *AddComment) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Comment == "" {
		errs.add("comment", "Comment is required")
	}
	return errs
}

// VendorReply is the body for POST /api/vendor/feedback/{id}/reply.
// The reply text is optional: an empty reply still stamps the response time.
type VendorReply struct {
	Reply string `json:"reply,omitempty"`
}

func (b *VendorReply) Validate() []apierr.FieldError { return nil }

// ForwardVendor is the body for POST /api/admin/feedback/{id}/forward-vendor.
type ForwardVendor struct {
	VendorID uint   `json:"vendor_id"`
	DueDays  int    `json:"due_days,omitempty"`
	Message  string `json:"message"`
}

func (b *ForwardVendor) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.VendorID == 0 {
		errs.add("vendor_id", "Vendor is required")
	}
	if b.Message == "" {
		errs.add("message", "Message is required")
	}
	if b.DueDays == 0 {
		b.DueDays = 7
	} else if b.DueDays < 0 || b.DueDays > 90 {
		errs.add("due_days", "Must be between 1 and 90")
	}
	return errs
}

// RequestApproval is the body for POST /api/admin/feedback/{id}/request-approval.
// The note is optional and becomes an internal comment when present.
type RequestApproval struct {
	Message string `json:"message,omitempty"`
}

func (b *RequestApproval) Validate() []apierr.FieldError { return nil }

// VendorApprove is the body for POST /api/superadmin/feedback/{id}/vendor-approve.
type VendorApprove struct {
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"`
}

func (b *VendorApprove) Validate() []apierr.FieldError {
	var errs fieldErrors
	if !oneOf(b.Action, []string{"APPROVE", "REJECT"}) {
		errs.add("action", "Must be 'APPROVE' or 'REJECT'")
	}
	return errs
}
