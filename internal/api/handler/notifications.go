package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// NotificationHandler handles /api/notifications/* routes. Every operation
// is scoped to the owning user; touching someone else's notification is a
// 403, not a 404, because the row does exist.
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func notificationJSON(n *model.Notification) map[string]any {
	return map[string]any{
		"id":                  n.ID,
		"user_id":             n.UserID,
		"type":                n.Type,
		"title":               n.Title,
		"message":             n.Message,
		"is_read":             n.IsRead,
		"related_entity_type": n.RelatedEntityType,
		"related_entity_id":   n.RelatedEntityID,
		"created_at":          n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List handles GET /api/notifications. The response carries both the total
// for the applied filter and the caller's overall unread count.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	skip, limit := respond.Pagination(r)
	ctx := r.Context()

	q := h.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", id.UserID)
	if respond.QueryBool(r, "unread_only", false) {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}
	var unread int64
	if err := h.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", id.UserID, false).Count(&unread).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var items []model.Notification
	if err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&items).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(items))
	for i := range items {
		out[i] = notificationJSON(&items[i])
	}
	env := listEnvelope("notifications", out, total, skip, limit)
	env["unread_count"] = unread
	respond.JSON(w, http.StatusOK, env)
}

// MarkRead handles PATCH /api/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	n, err := h.loadOwned(r, id.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !n.IsRead {
		if err := h.db.WithContext(r.Context()).Model(n).Update("is_read", true).Error; err != nil {
			respond.Error(w, err)
			return
		}
	}
	respond.JSON(w, http.StatusOK, notificationJSON(n))
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	n, err := h.loadOwned(r, id.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(n).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Notification deleted")
}

// MarkAllRead handles POST /api/notifications/mark-all-read. Idempotent:
// running it twice reports zero updated the second time.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	res := h.db.WithContext(r.Context()).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", id.UserID, false).
		Update("is_read", true)
	if res.Error != nil {
		respond.Error(w, res.Error)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "All notifications marked as read",
		"updated": res.RowsAffected,
	})
}

// DeleteAll handles DELETE /api/notifications/delete-all.
func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	res := h.db.WithContext(r.Context()).
		Where("user_id = ?", id.UserID).Delete(&model.Notification{})
	if res.Error != nil {
		respond.Error(w, res.Error)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "All notifications deleted",
		"deleted": res.RowsAffected,
	})
}

// Stats handles GET /api/notifications/stats.
func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var total, unread int64
	if err := h.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ?", id.UserID).Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", id.UserID, false).Count(&unread).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var rows []groupRow
	if err := h.db.WithContext(ctx).Model(&model.Notification{}).
		Select("type AS key, COUNT(*) AS count").
		Where("user_id = ?", id.UserID).Group("type").Scan(&rows).Error; err != nil {
		respond.Error(w, err)
		return
	}
	byType := make(map[string]int64, len(rows))
	for _, row := range rows {
		if row.Key != nil {
			byType[*row.Key] = row.Count
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"total":   total,
		"unread":  unread,
		"by_type": byType,
	})
}

// loadOwned fetches a notification and enforces ownership. A row owned by
// someone else yields 403.
func (h *NotificationHandler) loadOwned(r *http.Request, userID uint) (*model.Notification, error) {
	notificationID, err := respond.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	var n model.Notification
	err = h.db.WithContext(r.Context()).First(&n, notificationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("Notification")
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, apierr.Forbidden("This notification belongs to another user")
	}
	return &n, nil
}
