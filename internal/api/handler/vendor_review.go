package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// Vendor review lifecycle:
//
//	forward-vendor  → PENDING            (HR+ hands the item to a vendor)
//	vendor reply    → VENDOR_REPLIED     (vendor portal)
//	request-approval→ AWAITING_SUPERADMIN
//	vendor-approve  → APPROVED | REJECTED (SUPERADMIN decision)
//
// The hourly sweep may flip any pre-decision state to PAST_DUE.

func vendorStatusIn(f *model.Feedback, statuses ...string) bool {
	if f.VendorStatus == nil {
		return false
	}
	for _, s := range statuses {
		if *f.VendorStatus == s {
			return true
		}
	}
	return false
}

// ForwardVendor handles POST /api/admin/feedback/{id}/forward-vendor (HR+).
// Assigns the item to a vendor with a due date and records the instructions
// as an internal comment.
func (h *FeedbackHandler) ForwardVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.ForwardVendor
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var vendor model.User
	if err := h.db.WithContext(ctx).First(&vendor, req.VendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, apierr.NotFound("Vendor"))
			return
		}
		respond.Error(w, err)
		return
	}
	if vendor.Role != model.RoleVendor || !vendor.IsActive {
		respond.Error(w, apierr.BadRequest("Target user is not an active vendor"))
		return
	}

	dueAt := time.Now().Add(time.Duration(req.DueDays) * 24 * time.Hour)
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"vendor_assigned_to": vendor.ID,
			"vendor_due_at":      dueAt,
			"vendor_status":      model.VendorPending,
		}
		if err := tx.Model(fb).Updates(updates).Error; err != nil {
			return err
		}
		c := model.FeedbackComment{
			FeedbackID: fb.ID,
			UserID:     id.UserID,
			Comment:    req.Message,
			IsInternal: true,
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		details := fmt.Sprintf("Forwarded to vendor %s, due %s", vendor.Email, dueAt.UTC().Format(time.RFC3339))
		return audit(tx, id.UserID, "FORWARD_VENDOR", "feedback", fb.ID, details)
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":       "Forwarded to vendor",
		"vendor_due_at": dueAt.UTC().Format(time.RFC3339),
		"vendor_status": model.VendorPending,
	})
}

// RequestApproval handles POST /api/admin/feedback/{id}/request-approval
// (HR+). Moves a forwarded or replied item into the superadmin review queue
// and notifies every active SUPERADMIN.
func (h *FeedbackHandler) RequestApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.RequestApproval
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if !vendorStatusIn(fb, model.VendorPending, model.VendorReplied) {
		respond.Error(w, apierr.Forbidden("Vendor reply required before superadmin review"))
		return
	}

	ctx := r.Context()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"vendor_status":           model.VendorAwaitingApproval,
			"vendor_last_response_at": time.Now(),
		}
		if err := tx.Model(fb).Updates(updates).Error; err != nil {
			return err
		}

		details := "Requested superadmin review"
		if req.Message != "" {
			details = fmt.Sprintf("Requested superadmin review with note: %s", req.Message)
			c := model.FeedbackComment{
				FeedbackID: fb.ID,
				UserID:     id.UserID,
				Comment:    req.Message,
				IsInternal: true,
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		}
		if err := audit(tx, id.UserID, "REQUEST_SUPERADMIN_REVIEW", "feedback", fb.ID, details); err != nil {
			return err
		}

		var superAdmins []model.User
		if err := tx.Where("role = ? AND is_active = ?", model.RoleSuperAdmin, true).
			Find(&superAdmins).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("Feedback #%d requires superadmin approval", fb.ID)
		for i := range superAdmins {
			if err := notify(tx, superAdmins[i].ID, model.NotificationSuperAdminReview,
				"Review vendor resolution", msg, "FEEDBACK", fb.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":       "Sent for superadmin review",
		"vendor_status": model.VendorAwaitingApproval,
	})
}

// VendorApprove handles POST /api/superadmin/feedback/{id}/vendor-approve
// (SUPERADMIN). Accepts or rejects the vendor's resolution.
func (h *FeedbackHandler) VendorApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.VendorApprove
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if !vendorStatusIn(fb, model.VendorReplied, model.VendorAwaitingApproval) {
		respond.Error(w, apierr.Forbidden("Not awaiting superadmin decision"))
		return
	}

	status := model.VendorApproved
	action := "VENDOR_APPROVED"
	verdict := "approved"
	if req.Action == "REJECT" {
		status = model.VendorRejected
		action = "VENDOR_REJECTED"
		verdict = "rejected"
	}

	ctx := r.Context()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"vendor_status":           status,
			"vendor_last_response_at": time.Now(),
		}
		if err := tx.Model(fb).Updates(updates).Error; err != nil {
			return err
		}
		if req.Comment != "" {
			c := model.FeedbackComment{
				FeedbackID: fb.ID,
				UserID:     id.UserID,
				Comment:    req.Comment,
				IsInternal: true,
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		}
		return audit(tx, id.UserID, action, "feedback", fb.ID, "")
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("Vendor response %s", verdict),
		"vendor_status": status,
	})
}

// Timeline handles GET /api/feedback/{id}/timeline: the audit trail of one
// feedback item. Employees cannot see it; vendors only for their own
// assignments.
func (h *FeedbackHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if !isStaff(id.Role) && id.Role != model.RoleVendor {
		respond.Error(w, apierr.Forbidden("Not permitted"))
		return
	}
	fb, err := h.load(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if id.Role == model.RoleVendor && (fb.VendorAssignedTo == nil || *fb.VendorAssignedTo != id.UserID) {
		respond.Error(w, apierr.Forbidden("Not permitted"))
		return
	}

	var logs []model.AuditLog
	if err := h.db.WithContext(r.Context()).Preload("User").
		Where("entity_type = ? AND entity_id = ?", "feedback", fb.ID).
		Order("created_at").Find(&logs).Error; err != nil {
		respond.Error(w, err)
		return
	}

	events := make([]map[string]any, len(logs))
	for i := range logs {
		events[i] = auditJSON(&logs[i])
	}
	respond.JSON(w, http.StatusOK, map[string]any{"events": events})
}

func auditJSON(l *model.AuditLog) map[string]any {
	return map[string]any{
		"id":          l.ID,
		"user_id":     l.UserID,
		"action":      l.Action,
		"entity_type": l.EntityType,
		"entity_id":   l.EntityID,
		"details":     l.Details,
		"ip_address":  l.IPAddress,
		"created_at":  l.CreatedAt.UTC().Format(time.RFC3339),
		"user":        userBrief(l.User),
	}
}
