package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/config"
	"github.com/d9705996/hrportal/internal/model"
	"github.com/d9705996/hrportal/internal/sla"
	"gorm.io/gorm"
)

// AdminHandler handles /api/admin/* routes.
type AdminHandler struct {
	db      *gorm.DB
	sweeper *sla.Sweeper
	sla     config.SLAConfig
}

// NewAdminHandler creates an AdminHandler. The sweeper is the same instance
// the background worker uses; the admin endpoint just triggers it on demand.
func NewAdminHandler(db *gorm.DB, sweeper *sla.Sweeper, slaCfg config.SLAConfig) *AdminHandler {
	return &AdminHandler{db: db, sweeper: sweeper, sla: slaCfg}
}

// UpdateRole handles PATCH /api/admin/users/{id}/role (SUPERADMIN only).
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	userID, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.UpdateUserRole
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var u model.User
	if err := h.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, apierr.NotFound("User"))
			return
		}
		respond.Error(w, err)
		return
	}
	previous := u.Role
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&u).Update("role", req.Role).Error; err != nil {
			return err
		}
		details := fmt.Sprintf("Role changed from %s to %s", previous, req.Role)
		return audit(tx, id.UserID, "UPDATE_USER_ROLE", "user", u.ID, details)
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, userJSON(&u))
}

// UpdateStatus handles PATCH /api/admin/users/{id}/status (ADMIN+).
// Deactivation takes effect at the next token refresh, not instantly:
// outstanding access tokens stay valid until they expire.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	userID, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}
	if userID == id.UserID {
		respond.Error(w, apierr.Forbidden("Cannot change your own status"))
		return
	}
	var req request.UpdateUserStatus
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var u model.User
	if err := h.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, apierr.NotFound("User"))
			return
		}
		respond.Error(w, err)
		return
	}
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&u).Update("is_active", *req.IsActive).Error; err != nil {
			return err
		}
		details := "Account deactivated"
		if *req.IsActive {
			details = "Account activated"
		}
		return audit(tx, id.UserID, "UPDATE_USER_STATUS", "user", u.ID, details)
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, userJSON(&u))
}

// UserMetrics handles GET /api/admin/users (ADMIN+): roster totals, role and
// department breakdowns, and the most recent signups of the last 30 days.
func (h *AdminHandler) UserMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var total, active int64
	if err := h.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.db.WithContext(ctx).Model(&model.User{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		respond.Error(w, err)
		return
	}

	byRole, err := h.groupCount(ctx, "role")
	if err != nil {
		respond.Error(w, err)
		return
	}
	byDepartment, err := h.groupCount(ctx, "department")
	if err != nil {
		respond.Error(w, err)
		return
	}

	var recent []model.User
	cutoff := time.Now().AddDate(0, 0, -30)
	if err := h.db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Order("created_at DESC").Limit(10).
		Find(&recent).Error; err != nil {
		respond.Error(w, err)
		return
	}
	signups := make([]map[string]any, len(recent))
	for i := range recent {
		signups[i] = map[string]any{
			"id":         recent[i].ID,
			"email":      recent[i].Email,
			"full_name":  recent[i].FullName,
			"role":       recent[i].Role,
			"created_at": recent[i].CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"total_users":    total,
		"active_users":   active,
		"inactive_users": total - active,
		"by_role":        byRole,
		"by_department":  byDepartment,
		"recent_signups": signups,
	})
}

// AuditLogs handles GET /api/admin/audit-logs (ADMIN+): the trail of
// privileged actions, newest first.
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	skip, limit := respond.Pagination(r)
	ctx := r.Context()

	q := h.db.WithContext(ctx).Model(&model.AuditLog{})
	query := r.URL.Query()
	if v := query.Get("action"); v != "" {
		q = q.Where("action = ?", v)
	}
	if v := query.Get("entity_type"); v != "" {
		q = q.Where("entity_type = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}
	var logs []model.AuditLog
	if err := q.Preload("User").
		Order("created_at DESC").Offset(skip).Limit(limit).
		Find(&logs).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(logs))
	for i := range logs {
		out[i] = auditJSON(&logs[i])
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"logs":      out,
		"total":     total,
		"page":      skip/limit + 1,
		"page_size": limit,
	})
}

// FeedbackStats handles GET /api/admin/feedback-stats (HR+): the numbers
// behind the staff dashboard. Resolution rate and SLA compliance are
// percentages formatted to one decimal; average response time is measured
// from submission to the resolving update.
func (h *AdminHandler) FeedbackStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()
	closed := []string{model.FeedbackResolved, model.FeedbackClosed}

	var items []model.Feedback
	if err := h.db.WithContext(ctx).Find(&items).Error; err != nil {
		respond.Error(w, err)
		return
	}

	total := len(items)
	var resolved, urgent, compliant int
	var responseTime time.Duration
	statusCounts := map[string]int{}
	for i := range items {
		f := &items[i]
		statusCounts[f.Status]++
		isClosed := f.Status == model.FeedbackResolved || f.Status == model.FeedbackClosed
		if isClosed {
			resolved++
			responseTime += f.UpdatedAt.Sub(f.CreatedAt)
		}
		if f.Priority == model.PriorityUrgent && !isClosed {
			urgent++
		}
		if sla.StatusFor(f, h.sla, now).Status != sla.StatusBreached {
			compliant++
		}
	}

	resolutionRate := 0.0
	compliance := 100.0
	avgResponse := 0.0
	if total > 0 {
		resolutionRate = float64(resolved) / float64(total) * 100
		compliance = float64(compliant) / float64(total) * 100
	}
	if resolved > 0 {
		avgResponse = (responseTime / time.Duration(resolved)).Hours()
	}

	distribution := make([]map[string]any, 0, len(statusCounts))
	for _, status := range []string{model.FeedbackSubmitted, model.FeedbackUnderReview, model.FeedbackInProgress, model.FeedbackResolved, model.FeedbackClosed} {
		if n, ok := statusCounts[status]; ok {
			distribution = append(distribution, map[string]any{"name": status, "value": n})
		}
	}

	trends := make([]map[string]any, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 0, 1)

		var submitted, done int64
		if err := h.db.WithContext(ctx).Model(&model.Feedback{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&submitted).Error; err != nil {
			respond.Error(w, err)
			return
		}
		if err := h.db.WithContext(ctx).Model(&model.Feedback{}).
			Where("status IN ? AND updated_at >= ? AND updated_at < ?", closed, start, end).
			Count(&done).Error; err != nil {
			respond.Error(w, err)
			return
		}
		trends = append(trends, map[string]any{
			"date":       start.Format("Jan 2"),
			"complaints": submitted,
			"resolved":   done,
		})
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"total_complaints":    total,
		"resolution_rate":     fmt.Sprintf("%.1f", resolutionRate),
		"urgent_count":        urgent,
		"avg_response_time":   fmt.Sprintf("%.1fh", avgResponse),
		"sla_compliance":      fmt.Sprintf("%.1f%%", compliance),
		"status_distribution": distribution,
		"trends":              trends,
	})
}

// RunVendorSweep handles POST /api/admin/vendor-sla-sweep (ADMIN+).
func (h *AdminHandler) RunVendorSweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.sweeper.Run(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":  "Vendor SLA sweep completed",
		"warnings": res.Warnings,
		"overdue":  res.Overdue,
	})
}

type groupRow struct {
	Key   *string
	Count int64
}

func (h *AdminHandler) groupCount(ctx context.Context, column string) (map[string]int64, error) {
	var rows []groupRow
	err := h.db.WithContext(ctx).Model(&model.User{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := "unassigned"
		if row.Key != nil && *row.Key != "" {
			key = *row.Key
		}
		out[key] = row.Count
	}
	return out, nil
}
