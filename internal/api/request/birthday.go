package request

import (
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/model"
)

// CreateBirthdayEvent is the body for POST /api/birthday/events. The same
// body upserts: an existing (year, month) event is updated in place.
type CreateBirthdayEvent struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	EventDate   string  `json:"event_date"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
}

func (b *CreateBirthdayEvent) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Year < 2000 || b.Year > 2100 {
		errs.add("year", "Must be between 2000 and 2100")
	}
	if b.Month < 1 || b.Month > 12 {
		errs.add("month", "Must be between 1 and 12")
	}
	if !validRFC3339(b.EventDate) {
		errs.add("event_date", "Must be an RFC3339 timestamp")
	}
	if b.Title == "" || len(b.Title) > 255 {
		errs.add("title", "Must be between 1 and 255 characters")
	}
	if b.Description != nil && len(*b.Description) > 2000 {
		errs.add("description", "Must be at most 2000 characters")
	}
	if b.Location != nil && len(*b.Location) > 255 {
		errs.add("location", "Must be at most 255 characters")
	}
	return errs
}

// BirthdayRsvp is the body for POST /api/birthday/events/{id}/rsvp.
type BirthdayRsvp struct {
	RsvpStatus string `json:"rsvp_status"`
}

func (b *BirthdayRsvp) Validate() []apierr.FieldError {
	var errs fieldErrors
	if !oneOf(b.RsvpStatus, []string{model.RsvpGoing, model.RsvpNotGoing}) {
		errs.add("rsvp_status", "Must be 'going' or 'not_going'")
	}
	return errs
}
