package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// VendorHandler handles /api/vendor/* routes. These sit behind the vendor
// equality guard: only accounts whose role is exactly VENDOR reach them.
type VendorHandler struct {
	db *gorm.DB
}

// NewVendorHandler creates a VendorHandler.
func NewVendorHandler(db *gorm.DB) *VendorHandler {
	return &VendorHandler{db: db}
}

// ListAssigned handles GET /api/vendor/feedback: items forwarded to the
// calling vendor.
func (h *VendorHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	skip, limit := respond.Pagination(r)

	q := h.db.WithContext(r.Context()).Model(&model.Feedback{}).
		Where("vendor_assigned_to = ?", id.UserID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var items []model.Feedback
	if err := q.Order("vendor_due_at").Offset(skip).Limit(limit).Find(&items).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(items))
	for i := range items {
		f := &items[i]
		out[i] = map[string]any{
			"id":                      f.ID,
			"title":                   f.Title,
			"description":             f.Description,
			"category":                f.Category,
			"status":                  f.Status,
			"priority":                f.Priority,
			"vendor_status":           f.VendorStatus,
			"vendor_due_at":           timePtr(f.VendorDueAt),
			"vendor_last_response_at": timePtr(f.VendorLastResponseAt),
			"created_at":              f.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	respond.JSON(w, http.StatusOK, listEnvelope("feedback", out, total, skip, limit))
}

// Reply handles POST /api/vendor/feedback/{id}/reply. Stamps the response
// time, flips vendor status to VENDOR_REPLIED, records the reply text as an
// internal comment when present, and notifies every active SUPERADMIN.
func (h *VendorHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	feedbackID, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.VendorReply
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var fb model.Feedback
	if err := h.db.WithContext(ctx).First(&fb, feedbackID).Error; err != nil {
		respond.Error(w, apierr.NotFound("Feedback"))
		return
	}
	if fb.VendorAssignedTo == nil || *fb.VendorAssignedTo != id.UserID {
		respond.Error(w, apierr.Forbidden("Not assigned to you"))
		return
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]any{
			"vendor_last_response_at": now,
			"vendor_status":           model.VendorReplied,
		}
		if err := tx.Model(&fb).Updates(updates).Error; err != nil {
			return err
		}

		if req.Reply != "" {
			c := model.FeedbackComment{
				FeedbackID: fb.ID,
				UserID:     id.UserID,
				Comment:    req.Reply,
				IsInternal: true,
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		}

		var superAdmins []model.User
		if err := tx.Where("role = ? AND is_active = ?", model.RoleSuperAdmin, true).
			Find(&superAdmins).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("Vendor responded on feedback #%d", fb.ID)
		for i := range superAdmins {
			if err := notify(tx, superAdmins[i].ID, model.NotificationVendorReply, "Vendor replied", msg, "FEEDBACK", fb.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Reply submitted")
}
