package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/auth"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// BirthdayHandler handles /api/birthday/* routes.
type BirthdayHandler struct {
	db *gorm.DB
}

// NewBirthdayHandler creates a BirthdayHandler.
func NewBirthdayHandler(db *gorm.DB) *BirthdayHandler {
	return &BirthdayHandler{db: db}
}

func birthdayEventJSON(e *model.BirthdayEvent) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"year":        e.Year,
		"month":       e.Month,
		"event_date":  e.EventDate.UTC().Format(time.RFC3339),
		"title":       e.Title,
		"description": e.Description,
		"location":    e.Location,
		"created_by":  e.CreatedBy,
		"created_at":  e.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func registrationJSON(reg *model.BirthdayRegistration) map[string]any {
	out := map[string]any{
		"id":          reg.ID,
		"event_id":    reg.EventID,
		"user_id":     reg.UserID,
		"rsvp_status": reg.RsvpStatus,
		"created_at":  reg.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  reg.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if reg.User != nil {
		out["user"] = userBrief(reg.User)
	}
	return out
}

// ListEvents handles GET /api/birthday/events (HR+).
func (h *BirthdayHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	skip, limit := respond.Pagination(r)
	ctx := r.Context()

	q := h.db.WithContext(ctx).Model(&model.BirthdayEvent{})
	if v := r.URL.Query().Get("year"); v != "" {
		q = q.Where("year = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var events []model.BirthdayEvent
	if err := q.Order("year DESC, month DESC").Offset(skip).Limit(limit).Find(&events).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(events))
	for i := range events {
		out[i] = birthdayEventJSON(&events[i])
	}
	respond.JSON(w, http.StatusOK, listEnvelope("events", out, total, skip, limit))
}

// UpsertEvent handles POST /api/birthday/events (HR+). One event exists per
// (year, month); posting again updates it in place. Registrations are
// reconciled against users whose birthday falls in that month, and newly
// registered users are invited via notification. The whole operation runs
// in a single transaction so a partial reconcile can never be observed.
func (h *BirthdayHandler) UpsertEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.CreateBirthdayEvent
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	eventDate, err := time.Parse(time.RFC3339, req.EventDate)
	if err != nil {
		respond.Error(w, apierr.BadRequest("Invalid event_date"))
		return
	}

	ctx := r.Context()
	var event model.BirthdayEvent
	created := false

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("year = ? AND month = ?", req.Year, req.Month).First(&event).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			event = model.BirthdayEvent{
				Year:        req.Year,
				Month:       req.Month,
				EventDate:   eventDate,
				Title:       req.Title,
				Description: req.Description,
				Location:    req.Location,
				CreatedBy:   id.UserID,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			updates := map[string]any{
				"event_date":  eventDate,
				"title":       req.Title,
				"description": req.Description,
				"location":    req.Location,
			}
			if err := tx.Model(&event).Updates(updates).Error; err != nil {
				return err
			}
		}

		return h.reconcileRegistrations(tx, &event)
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.JSON(w, status, birthdayEventJSON(&event))
}

// reconcileRegistrations registers every active user whose birthday falls in
// the event month and sends each new registrant an invitation.
func (h *BirthdayHandler) reconcileRegistrations(tx *gorm.DB, event *model.BirthdayEvent) error {
	var users []model.User
	if err := tx.Where("is_active = ? AND date_of_birth IS NOT NULL", true).Find(&users).Error; err != nil {
		return err
	}

	for i := range users {
		u := &users[i]
		if int(u.DateOfBirth.Month()) != event.Month {
			continue
		}
		var count int64
		if err := tx.Model(&model.BirthdayRegistration{}).
			Where("event_id = ? AND user_id = ?", event.ID, u.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		reg := model.BirthdayRegistration{EventID: event.ID, UserID: u.ID, RsvpStatus: model.RsvpPending}
		if err := tx.Create(&reg).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("You're invited to %q — please RSVP", event.Title)
		if err := notify(tx, u.ID, model.NotificationBirthdayInvite, "Birthday celebration", msg, "BIRTHDAY_EVENT", event.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetEvent handles GET /api/birthday/events/{id}: HR+ or a registrant.
func (h *BirthdayHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	event, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !auth.HasRole(id.Role, model.RoleHR) && !h.isRegistrant(r, event.ID, id.UserID) {
		respond.Error(w, apierr.Forbidden("Only registrants can view this event"))
		return
	}
	respond.JSON(w, http.StatusOK, birthdayEventJSON(event))
}

// ListRegistrations handles GET /api/birthday/events/{id}/registrations (HR+).
func (h *BirthdayHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	event, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var regs []model.BirthdayRegistration
	if err := h.db.WithContext(r.Context()).Preload("User").
		Where("event_id = ?", event.ID).Order("id").Find(&regs).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(regs))
	for i := range regs {
		out[i] = registrationJSON(&regs[i])
	}
	respond.JSON(w, http.StatusOK, map[string]any{"registrations": out})
}

// Rsvp handles POST /api/birthday/events/{id}/rsvp. Only a registrant may
// answer, and only with going/not_going.
func (h *BirthdayHandler) Rsvp(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	event, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.BirthdayRsvp
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var reg model.BirthdayRegistration
	if err := h.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", event.ID, id.UserID).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, apierr.Forbidden("You are not registered for this event"))
			return
		}
		respond.Error(w, err)
		return
	}
	if err := h.db.WithContext(ctx).Model(&reg).Update("rsvp_status", req.RsvpStatus).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, registrationJSON(&reg))
}

func (h *BirthdayHandler) load(r *http.Request) (*model.BirthdayEvent, error) {
	eventID, err := respond.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	var event model.BirthdayEvent
	err = h.db.WithContext(r.Context()).First(&event, eventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("Birthday event")
		}
		return nil, err
	}
	return &event, nil
}

func (h *BirthdayHandler) isRegistrant(r *http.Request, eventID, userID uint) bool {
	var count int64
	h.db.WithContext(r.Context()).Model(&model.BirthdayRegistration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).Count(&count)
	return count > 0
}
