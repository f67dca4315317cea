package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/middleware"
	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/config"
	"github.com/d9705996/hrportal/internal/model"
	"github.com/d9705996/hrportal/internal/sla"
	"gorm.io/gorm"
)

// FeedbackHandler handles /api/feedback/* routes.
type FeedbackHandler struct {
	db  *gorm.DB
	sla config.SLAConfig
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(db *gorm.DB, slaCfg config.SLAConfig) *FeedbackHandler {
	return &FeedbackHandler{db: db, sla: slaCfg}
}

func (h *FeedbackHandler) feedbackJSON(f *model.Feedback, includeSLA bool) map[string]any {
	out := map[string]any{
		"id":           f.ID,
		"title":        f.Title,
		"description":  f.Description,
		"category":     f.Category,
		"status":       f.Status,
		"priority":     f.Priority,
		"is_anonymous": f.IsAnonymous,
		"submitted_by": f.SubmittedBy,
		"assigned_to":  f.AssignedTo,
		"created_at":   f.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":   f.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if f.IsAnonymous {
		out["submitter"] = nil
	} else {
		out["submitter"] = userBrief(f.Submitter)
	}
	out["assignee"] = userBrief(f.Assignee)
	if f.VendorAssignedTo != nil {
		out["vendor_assigned_to"] = *f.VendorAssignedTo
		out["vendor_status"] = f.VendorStatus
		out["vendor_due_at"] = timePtr(f.VendorDueAt)
		out["vendor_last_response_at"] = timePtr(f.VendorLastResponseAt)
	}
	if includeSLA {
		out["sla_status"] = sla.StatusFor(f, h.sla, time.Now())
	}
	return out
}

// categoryAssigneeRoles orders which staff role gets first claim on new
// feedback per category. MANAGEMENT items go to ADMIN first; everything else
// prefers HR, falling through role by role until an active user is found.
var categoryAssigneeRoles = map[string][]string{
	"WORKPLACE":  {model.RoleHR, model.RoleAdmin, model.RoleSuperAdmin},
	"MANAGEMENT": {model.RoleAdmin, model.RoleHR, model.RoleSuperAdmin},
	"BENEFITS":   {model.RoleHR, model.RoleAdmin, model.RoleSuperAdmin},
	"CULTURE":    {model.RoleHR, model.RoleAdmin, model.RoleSuperAdmin},
	"GENERAL":    {model.RoleHR, model.RoleAdmin, model.RoleSuperAdmin},
	"OTHER":      {model.RoleHR, model.RoleAdmin, model.RoleSuperAdmin},
}

// assigneeForCategory picks the lowest-id active user of the first preferred
// role that has one. Returns nil when no staff member is available.
func assigneeForCategory(tx *gorm.DB, category string) (*model.User, error) {
	roles, ok := categoryAssigneeRoles[category]
	if !ok {
		roles = categoryAssigneeRoles["GENERAL"]
	}
	for _, role := range roles {
		var u model.User
		err := tx.Where("role = ? AND is_active = ?", role, true).Order("id").First(&u).Error
		if err == nil {
			return &u, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// scopeForRole restricts the base query to what the caller may see:
// employees and vendors see their own submissions, HR and ADMIN see what is
// assigned to them, SUPERADMIN sees everything.
func (h *FeedbackHandler) scopeForRole(q *gorm.DB, id middleware.Identity) *gorm.DB {
	switch id.Role {
	case model.RoleSuperAdmin:
		return q
	case model.RoleHR, model.RoleAdmin:
		return q.Where("assigned_to = ? OR submitted_by = ?", id.UserID, id.UserID)
	default:
		return q.Where("submitted_by = ?", id.UserID)
	}
}

// canView reports whether the caller may read one feedback item.
func canView(f *model.Feedback, id middleware.Identity) bool {
	if id.Role == model.RoleSuperAdmin {
		return true
	}
	if f.SubmittedBy == id.UserID {
		return true
	}
	if f.AssignedTo != nil && *f.AssignedTo == id.UserID {
		return true
	}
	if f.VendorAssignedTo != nil && *f.VendorAssignedTo == id.UserID {
		return true
	}
	return isStaff(id.Role)
}

// List handles GET /api/feedback.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	skip, limit := respond.Pagination(r)
	ctx := r.Context()
	query := r.URL.Query()

	q := h.db.WithContext(ctx).Model(&model.Feedback{})
	switch {
	case respond.QueryBool(r, "my_feedback", false):
		q = q.Where("submitted_by = ?", id.UserID)
	case respond.QueryBool(r, "my_assigned", false):
		q = q.Where("assigned_to = ?", id.UserID)
	default:
		q = h.scopeForRole(q, id)
	}

	if v := query.Get("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := query.Get("category"); v != "" {
		q = q.Where("category = ?", v)
	}
	if v := query.Get("priority"); v != "" {
		q = q.Where("priority = ?", v)
	}
	if v := query.Get("assigned"); v != "" {
		if v == "true" || v == "1" {
			q = q.Where("assigned_to IS NOT NULL")
		} else {
			q = q.Where("assigned_to IS NULL")
		}
	}
	if v := query.Get("q"); v != "" {
		like := "%" + v + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var items []model.Feedback
	if err := q.Preload("Submitter").Preload("Assignee").
		Order("created_at DESC").Offset(skip).Limit(limit).
		Find(&items).Error; err != nil {
		respond.Error(w, err)
		return
	}

	// The sla filter applies to the computed status, so it runs after load.
	slaFilter := query.Get("sla")
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		meta := sla.StatusFor(&items[i], h.sla, time.Now())
		if slaFilter != "" && meta.Status != slaFilter {
			continue
		}
		out = append(out, h.feedbackJSON(&items[i], true))
	}
	respond.JSON(w, http.StatusOK, listEnvelope("feedback", out, total, skip, limit))
}

// Create handles POST /api/feedback. New items are auto-assigned following
// the category's role-preference order; if no staff member is available the
// item stays unassigned and every staff member is notified instead.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.CreateFeedback
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	fb := model.Feedback{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      model.FeedbackSubmitted,
		Priority:    req.Priority,
		IsAnonymous: req.IsAnonymous,
		SubmittedBy: id.UserID,
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignee, err := assigneeForCategory(tx, fb.Category)
		if err != nil {
			return err
		}
		if assignee != nil {
			fb.AssignedTo = &assignee.ID
		}

		if err := tx.Create(&fb).Error; err != nil {
			return err
		}
		if len(req.Attachments) > 0 {
			entity := "feedback"
			if err := tx.Model(&model.File{}).
				Where("id IN ? AND uploaded_by = ? AND entity_type IS NULL", req.Attachments, id.UserID).
				Updates(map[string]any{"entity_type": entity, "entity_id": fb.ID}).Error; err != nil {
				return err
			}
		}

		title := "New feedback submitted"
		msg := fmt.Sprintf("New feedback: %s", fb.Title)
		if fb.AssignedTo != nil {
			return notify(tx, *fb.AssignedTo, model.NotificationFeedback, title, msg, "FEEDBACK", fb.ID)
		}
		var staff []model.User
		if err := tx.Where("role IN ? AND is_active = ?", []string{model.RoleHR, model.RoleAdmin, model.RoleSuperAdmin}, true).
			Find(&staff).Error; err != nil {
			return err
		}
		for i := range staff {
			if err := notify(tx, staff[i].ID, model.NotificationFeedback, title, msg, "FEEDBACK", fb.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	h.db.WithContext(ctx).Preload("Submitter").Preload("Assignee").First(&fb, fb.ID)
	respond.JSON(w, http.StatusCreated, h.feedbackJSON(&fb, false))
}

// Get handles GET /api/feedback/{id}.
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !canView(fb, id) {
		respond.Error(w, apierr.Forbidden("You do not have access to this feedback"))
		return
	}
	respond.JSON(w, http.StatusOK, h.feedbackJSON(fb, true))
}

// Update handles PATCH /api/feedback/{id}. Only the submitter may edit, and
// only while the item is still SUBMITTED.
func (h *FeedbackHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if fb.SubmittedBy != id.UserID {
		respond.Error(w, apierr.Forbidden("Only the submitter can edit feedback"))
		return
	}
	if fb.Status != model.FeedbackSubmitted {
		respond.Error(w, apierr.Conflict("Feedback can only be edited while status is SUBMITTED"))
		return
	}

	var req request.UpdateFeedback
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).Model(fb).Updates(updates).Error; err != nil {
			respond.Error(w, err)
			return
		}
	}
	respond.JSON(w, http.StatusOK, h.feedbackJSON(fb, false))
}

// UpdateStatus handles PATCH /api/feedback/{id}/status (HR+). The submitter
// is notified of every transition; an explicit reassignment also notifies
// the new assignee.
func (h *FeedbackHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.UpdateFeedbackStatus
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": req.Status}
		if req.AssignedTo != nil {
			var assignee model.User
			if err := tx.First(&assignee, *req.AssignedTo).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierr.NotFound("Assignee")
				}
				return err
			}
			if !isStaff(assignee.Role) {
				return apierr.BadRequest("Assignee must be HR or above")
			}
			updates["assigned_to"] = *req.AssignedTo
		}
		if err := tx.Model(fb).Updates(updates).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("Your feedback %q is now %s", fb.Title, req.Status)
		if err := notify(tx, fb.SubmittedBy, model.NotificationFeedback, "Feedback status updated", msg, "FEEDBACK", fb.ID); err != nil {
			return err
		}
		if req.AssignedTo != nil {
			assignMsg := fmt.Sprintf("Feedback %q was assigned to you", fb.Title)
			if err := notify(tx, *req.AssignedTo, model.NotificationFeedback, "Feedback assigned", assignMsg, "FEEDBACK", fb.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, h.feedbackJSON(fb, false))
}

// ListComments handles GET /api/feedback/{id}/comments. Internal comments
// are stripped for callers outside the staff band.
func (h *FeedbackHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !canView(fb, id) {
		respond.Error(w, apierr.Forbidden("You do not have access to this feedback"))
		return
	}

	q := h.db.WithContext(r.Context()).Where("feedback_id = ?", fb.ID)
	if !isStaff(id.Role) && !(fb.VendorAssignedTo != nil && *fb.VendorAssignedTo == id.UserID) {
		q = q.Where("is_internal = ?", false)
	}

	var comments []model.FeedbackComment
	if err := q.Preload("User").Order("created_at").Find(&comments).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(comments))
	for i := range comments {
		c := &comments[i]
		out[i] = map[string]any{
			"id":          c.ID,
			"feedback_id": c.FeedbackID,
			"user_id":     c.UserID,
			"comment":     c.Comment,
			"is_internal": c.IsInternal,
			"created_at":  c.CreatedAt.UTC().Format(time.RFC3339),
			"user":        userBrief(c.User),
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"comments": out})
}

// AddComment handles POST /api/feedback/{id}/comments. Only staff may mark
// a comment internal.
func (h *FeedbackHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !canView(fb, id) {
		respond.Error(w, apierr.Forbidden("You do not have access to this feedback"))
		return
	}
	var req request.AddComment
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if req.IsInternal && !isStaff(id.Role) {
		respond.Error(w, apierr.Forbidden("Only staff can post internal comments"))
		return
	}

	c := model.FeedbackComment{
		FeedbackID: fb.ID,
		UserID:     id.UserID,
		Comment:    req.Comment,
		IsInternal: req.IsInternal,
	}
	if err := h.db.WithContext(r.Context()).Create(&c).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"id":          c.ID,
		"feedback_id": c.FeedbackID,
		"user_id":     c.UserID,
		"comment":     c.Comment,
		"is_internal": c.IsInternal,
		"created_at":  c.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *FeedbackHandler) load(r *http.Request, param string) (*model.Feedback, error) {
	feedbackID, err := respond.PathID(r, param)
	if err != nil {
		return nil, err
	}
	var fb model.Feedback
	err = h.db.WithContext(r.Context()).Preload("Submitter").Preload("Assignee").First(&fb, feedbackID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("Feedback")
		}
		return nil, err
	}
	return &fb, nil
}
