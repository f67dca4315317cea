// Package sla computes feedback SLA state and runs the vendor due-date sweep.
package sla

import (
	"context"
	"fmt"
	"time"

	"github.com/d9705996/hrportal/internal/config"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// SLA status values reported on feedback list responses.
const (
	StatusNormal   = "NORMAL"
	StatusWarning  = "WARNING"
	StatusBreached = "BREACHED"
)

// Meta is the computed SLA annotation attached to a feedback item.
type Meta struct {
	Status             string `json:"status"`
	SecondsToBreach    *int64 `json:"seconds_to_breach,omitempty"`
	SecondsSinceBreach *int64 `json:"seconds_since_breach,omitempty"`
}

// StatusFor computes the SLA annotation for one feedback item at time now.
// URGENT items stuck in SUBMITTED breach after cfg.UrgentHours; items sitting
// in UNDER_REVIEW go to WARNING after cfg.UnderReviewDays.
func StatusFor(f *model.Feedback, cfg config.SLAConfig, now time.Time) Meta {
	if f.Priority == model.PriorityUrgent && f.Status == model.FeedbackSubmitted {
		deadline := f.CreatedAt.Add(time.Duration(cfg.UrgentHours) * time.Hour)
		if now.After(deadline) {
			since := int64(now.Sub(deadline).Seconds())
			return Meta{Status: StatusBreached, SecondsSinceBreach: &since}
		}
		toBreach := int64(deadline.Sub(now).Seconds())
		return Meta{Status: StatusNormal, SecondsToBreach: &toBreach}
	}
	if f.Status == model.FeedbackUnderReview {
		stale := f.UpdatedAt.Add(time.Duration(cfg.UnderReviewDays) * 24 * time.Hour)
		if now.After(stale) {
			since := int64(now.Sub(stale).Seconds())
			return Meta{Status: StatusWarning, SecondsSinceBreach: &since}
		}
	}
	return Meta{Status: StatusNormal}
}

// Result reports what one sweep pass did.
type Result struct {
	Warnings int `json:"warnings"`
	Overdue  int `json:"overdue"`
}

// Sweeper walks vendor-assigned feedback and flags items that are past their
// due date or approaching it without a vendor response. It is constructed
// once in run() and injected wherever a sweep can be triggered.
type Sweeper struct {
	db  *gorm.DB
	cfg config.SLAConfig
}

// NewSweeper builds a Sweeper over the given database handle.
func NewSweeper(db *gorm.DB, cfg config.SLAConfig) *Sweeper {
	return &Sweeper{db: db, cfg: cfg}
}

// Run executes one sweep pass. Past-due items get vendorStatus=PAST_DUE plus
// notifications to the vendor and the internal assignee; items inside the
// warning window with no vendor response yet get warning notifications.
// Each pass re-reads the database, so repeat runs only act on rows that are
// still pending.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	now := time.Now()
	var res Result

	var items []model.Feedback
	err := s.db.WithContext(ctx).
		Where("vendor_assigned_to IS NOT NULL AND vendor_due_at IS NOT NULL").
		Where("status NOT IN ?", []string{model.FeedbackResolved, model.FeedbackClosed}).
		Find(&items).Error
	if err != nil {
		return res, fmt.Errorf("load vendor feedback: %w", err)
	}

	warnWindow := time.Duration(s.cfg.VendorWarnDays) * 24 * time.Hour
	for i := range items {
		f := &items[i]
		switch {
		case now.After(*f.VendorDueAt):
			if f.VendorStatus != nil && *f.VendorStatus == model.VendorPastDue {
				continue // already flagged in a previous pass
			}
			if err := s.flagOverdue(ctx, f); err != nil {
				return res, err
			}
			res.Overdue++
		case f.VendorLastResponseAt == nil && now.After(f.VendorDueAt.Add(-warnWindow)):
			if err := s.warn(ctx, f, now); err != nil {
				return res, err
			}
			res.Warnings++
		}
	}
	return res, nil
}

// sweepRecipients lists who hears about a vendor deadline: the vendor and,
// when set, the internal assignee.
func sweepRecipients(f *model.Feedback) []uint {
	ids := []uint{*f.VendorAssignedTo}
	if f.AssignedTo != nil {
		ids = append(ids, *f.AssignedTo)
	}
	return ids
}

func sweepNotifications(f *model.Feedback, title, message string) []model.Notification {
	entityType := "feedback"
	notes := make([]model.Notification, 0, 2)
	for _, userID := range sweepRecipients(f) {
		notes = append(notes, model.Notification{
			UserID:            userID,
			Type:              model.NotificationFeedback,
			Title:             title,
			Message:           message,
			RelatedEntityType: &entityType,
			RelatedEntityID:   &f.ID,
		})
	}
	return notes
}

func (s *Sweeper) flagOverdue(ctx context.Context, f *model.Feedback) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(f).Update("vendor_status", model.VendorPastDue).Error; err != nil {
			return fmt.Errorf("mark past due: %w", err)
		}
		notes := sweepNotifications(f, "Vendor task overdue",
			fmt.Sprintf("The vendor response for %q is past its due date", f.Title))
		if err := tx.Create(&notes).Error; err != nil {
			return fmt.Errorf("create overdue notifications: %w", err)
		}
		return nil
	})
}

func (s *Sweeper) warn(ctx context.Context, f *model.Feedback, now time.Time) error {
	daysLeft := int(f.VendorDueAt.Sub(now).Hours() / 24)
	notes := sweepNotifications(f, "Vendor response pending",
		fmt.Sprintf("The vendor response for %q is due in %d day(s)", f.Title, daysLeft))
	if err := s.db.WithContext(ctx).Create(&notes).Error; err != nil {
		return fmt.Errorf("create warning notifications: %w", err)
	}
	return nil
}
