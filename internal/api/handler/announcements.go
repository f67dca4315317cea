package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// AnnouncementHandler handles /api/announcements/* routes.
type AnnouncementHandler struct {
	db *gorm.DB
}

// NewAnnouncementHandler creates an AnnouncementHandler.
func NewAnnouncementHandler(db *gorm.DB) *AnnouncementHandler {
	return &AnnouncementHandler{db: db}
}

func announcementJSON(a *model.Announcement) map[string]any {
	return map[string]any{
		"id":         a.ID,
		"title":      a.Title,
		"content":    a.Content,
		"category":   a.Category,
		"is_pinned":  a.IsPinned,
		"is_active":  a.IsActive,
		"expires_at": timePtr(a.ExpiresAt),
		"created_by": a.CreatedBy,
		"creator":    userBrief(a.Creator),
		"created_at": a.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// activeScope keeps announcements that are flagged active and not expired.
func activeScope(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ? AND (expires_at IS NULL OR expires_at > ?)", true, time.Now())
}

// List handles GET /api/announcements: active items, pinned first.
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := respond.Pagination(r)
	ctx := r.Context()

	q := h.db.WithContext(ctx).Model(&model.Announcement{})
	if !respond.QueryBool(r, "include_inactive", false) {
		q = activeScope(q)
	}
	if v := r.URL.Query().Get("category"); v != "" {
		q = q.Where("category = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var items []model.Announcement
	if err := q.Preload("Creator").
		Order("is_pinned DESC, created_at DESC").
		Offset(skip).Limit(limit).Find(&items).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(items))
	for i := range items {
		out[i] = announcementJSON(&items[i])
	}
	respond.JSON(w, http.StatusOK, listEnvelope("announcements", out, total, skip, limit))
}

// Create handles POST /api/announcements (HR+). Every active user gets a
// notification in the same transaction as the insert.
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.CreateAnnouncement
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	a := model.Announcement{
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		IsPinned:  req.IsPinned,
		IsActive:  true,
		CreatedBy: id.UserID,
	}
	if req.ExpiresAt != nil {
		exp, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			respond.Error(w, apierr.BadRequest("Invalid expires_at"))
			return
		}
		a.ExpiresAt = &exp
	}

	ctx := r.Context()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		var users []model.User
		if err := tx.Where("is_active = ?", true).Find(&users).Error; err != nil {
			return err
		}
		for i := range users {
			if users[i].ID == id.UserID {
				continue
			}
			if err := notify(tx, users[i].ID, model.NotificationAnnouncement,
				"New announcement", a.Title, "ANNOUNCEMENT", a.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, announcementJSON(&a))
}

// Get handles GET /api/announcements/{id}.
func (h *AnnouncementHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, announcementJSON(a))
}

// Update handles PATCH /api/announcements/{id} (HR+).
func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.UpdateAnnouncement
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsPinned != nil {
		updates["is_pinned"] = *req.IsPinned
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ExpiresAt != nil {
		if *req.ExpiresAt == "" {
			updates["expires_at"] = nil
		} else {
			exp, err := time.Parse(time.RFC3339, *req.ExpiresAt)
			if err != nil {
				respond.Error(w, apierr.BadRequest("Invalid expires_at"))
				return
			}
			updates["expires_at"] = exp
		}
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).Model(a).Updates(updates).Error; err != nil {
			respond.Error(w, err)
			return
		}
	}
	respond.JSON(w, http.StatusOK, announcementJSON(a))
}

// Delete handles DELETE /api/announcements/{id} (ADMIN+).
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(a).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Announcement deleted")
}

// Stats handles GET /api/announcements/stats (HR+).
func (h *AnnouncementHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var total, active, pinned int64
	if err := h.db.WithContext(ctx).Model(&model.Announcement{}).Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}
	if err := activeScope(h.db.WithContext(ctx).Model(&model.Announcement{})).Count(&active).Error; err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.db.WithContext(ctx).Model(&model.Announcement{}).Where("is_pinned = ?", true).Count(&pinned).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var rows []groupRow
	if err := h.db.WithContext(ctx).Model(&model.Announcement{}).
		Select("category AS key, COUNT(*) AS count").Group("category").Scan(&rows).Error; err != nil {
		respond.Error(w, err)
		return
	}
	byCategory := make(map[string]int64, len(rows))
	for _, row := range rows {
		if row.Key != nil {
			byCategory[*row.Key] = row.Count
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"total":       total,
		"active":      active,
		"pinned":      pinned,
		"by_category": byCategory,
	})
}

func (h *AnnouncementHandler) load(r *http.Request) (*model.Announcement, error) {
	announcementID, err := respond.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	var a model.Announcement
	err = h.db.WithContext(r.Context()).Preload("Creator").First(&a, announcementID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("Announcement")
		}
		return nil, err
	}
	return &a, nil
}
