package request

import "github.com/d9705996/hrportal/internal/apierr"

// CreateChannel is the body for POST /api/channels.
type CreateChannel struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ChannelType string  `json:"channel_type,omitempty"`
	IsPrivate   bool    `json:"is_private,omitempty"`
}

func (b *CreateChannel) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Name == "" || len(b.Name) > 100 {
		errs.add("name", "Must be between 1 and 100 characters")
	}
	if b.Description != nil && len(*b.Description) > 500 {
		errs.add("description", "Must be at most 500 characters")
	}
	if b.ChannelType == "" {
		b.ChannelType = "general"
	} else if len(b.ChannelType) > 50 {
		errs.add("channel_type", "Must be at most 50 characters")
	}
	return errs
}

// UpdateChannel is the body for PATCH /api/channels/{id}.
type UpdateChannel struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ChannelType *string `json:"channel_type,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

func (b *UpdateChannel) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Name != nil && (*b.Name == "" || len(*b.Name) > 100) {
		errs.add("name", "Must be between 1 and 100 characters")
	}
	if b.Description != nil && len(*b.Description) > 500 {
		errs.add("description", "Must be at most 500 characters")
	}
	if b.ChannelType != nil && (*b.ChannelType == "" || len(*b.ChannelType) > 50) {
		errs.add("channel_type", "Must be between 1 and 50 characters")
	}
	return errs
}

// JoinChannel is the body for POST /api/memberships/join.
type JoinChannel struct {
	ChannelID uint `json:"channel_id"`
}

func (b *JoinChannel) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.ChannelID == 0 {
		errs.add("channel_id", "Must be a positive integer")
	}
	return errs
}

// LeaveChannel is the body for POST /api/memberships/leave.
type LeaveChannel struct {
	ChannelID uint `json:"channel_id"`
}

func (b *LeaveChannel) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.ChannelID == 0 {
		errs.add("channel_id", "Must be a positive integer")
	}
	return errs
}
