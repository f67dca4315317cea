package handler

import (
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/d9705996/hrportal/internal/api/middleware"
	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/auth"
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// ChannelHandler handles /api/channels/* routes.
type ChannelHandler struct {
	db *gorm.DB
}

// NewChannelHandler creates a ChannelHandler.
func NewChannelHandler(db *gorm.DB) *ChannelHandler {
	return &ChannelHandler{db: db}
}

func channelJSON(c *model.Channel, memberCount int64) map[string]any {
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"description":  c.Description,
		"channel_type": c.ChannelType,
		"is_private":   c.IsPrivate,
		"join_code":    c.JoinCode,
		"created_by":   c.CreatedBy,
		"member_count": memberCount,
		"creator":      userBrief(c.Creator),
		"created_at":   c.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// List handles GET /api/channels: public channels plus any the caller
// created or joined.
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	skip, limit := respond.Pagination(r)
	ctx := r.Context()

	visible := h.db.WithContext(ctx).Model(&model.Channel{}).
		Where("is_private = ? OR created_by = ? OR id IN (?)",
			false, id.UserID,
			h.db.Model(&model.ChannelMember{}).Select("channel_id").Where("user_id = ?", id.UserID),
		)

	var total int64
	if err := visible.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var channels []model.Channel
	if err := visible.Preload("Creator").Order("name").Offset(skip).Limit(limit).Find(&channels).Error; err != nil {
		respond.Error(w, err)
		return
	}

	items := make([]map[string]any, len(channels))
	for i := range channels {
		var members int64
		if err := h.db.WithContext(ctx).Model(&model.ChannelMember{}).
			Where("channel_id = ?", channels[i].ID).Count(&members).Error; err != nil {
			respond.Error(w, err)
			return
		}
		items[i] = channelJSON(&channels[i], members)
	}
	respond.JSON(w, http.StatusOK, listEnvelope("channels", items, total, skip, limit))
}

// Create handles POST /api/channels. The creator is auto-joined as a
// MODERATOR and the channel gets a unique 8-character join code.
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.CreateChannel
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	ch := model.Channel{
		Name:        req.Name,
		Description: req.Description,
		ChannelType: req.ChannelType,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   id.UserID,
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := h.uniqueJoinCode(tx)
		if err != nil {
			return err
		}
		ch.JoinCode = code
		if err := tx.Create(&ch).Error; err != nil {
			return err
		}
		member := model.ChannelMember{UserID: id.UserID, ChannelID: ch.ID, Role: model.MemberRoleModerator}
		return tx.Create(&member).Error
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, channelJSON(&ch, 1))
}

// Get handles GET /api/channels/{id}.
func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ch, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if ch.IsPrivate && !h.isMember(r, ch.ID, id.UserID) && ch.CreatedBy != id.UserID && !auth.HasRole(id.Role, model.RoleAdmin) {
		respond.Error(w, apierr.Forbidden("This channel is private"))
		return
	}

	var members int64
	if err := h.db.WithContext(r.Context()).Model(&model.ChannelMember{}).
		Where("channel_id = ?", ch.ID).Count(&members).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, channelJSON(ch, members))
}

// Update handles PATCH /api/channels/{id}: moderators of the channel or
// ADMIN+ only.
func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ch, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !h.canManage(r, ch, id) {
		respond.Error(w, apierr.Forbidden("Only channel moderators or admins can update a channel"))
		return
	}

	var req request.UpdateChannel
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ChannelType != nil {
		updates["channel_type"] = *req.ChannelType
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).Model(ch).Updates(updates).Error; err != nil {
			respond.Error(w, err)
			return
		}
	}

	var members int64
	if err := h.db.WithContext(r.Context()).Model(&model.ChannelMember{}).
		Where("channel_id = ?", ch.ID).Count(&members).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, channelJSON(ch, members))
}

// Delete handles DELETE /api/channels/{id}: moderators or ADMIN+. Membership
// rows go with the channel.
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ch, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if !h.canManage(r, ch, id) {
		respond.Error(w, apierr.Forbidden("Only channel moderators or admins can delete a channel"))
		return
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", ch.ID).Delete(&model.ChannelMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(ch).Error
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "Channel deleted")
}

// ListMembers handles GET /api/channels/{id}/members.
func (h *ChannelHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ch, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if ch.IsPrivate && !h.isMember(r, ch.ID, id.UserID) && ch.CreatedBy != id.UserID && !auth.HasRole(id.Role, model.RoleAdmin) {
		respond.Error(w, apierr.Forbidden("This channel is private"))
		return
	}

	var members []model.ChannelMember
	if err := h.db.WithContext(r.Context()).Preload("User").
		Where("channel_id = ?", ch.ID).Order("joined_at").Find(&members).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(members))
	for i := range members {
		m := &members[i]
		entry := map[string]any{
			"id":         m.ID,
			"user_id":    m.UserID,
			"channel_id": m.ChannelID,
			"role":       m.Role,
			"joined_at":  m.JoinedAt.UTC().Format(time.RFC3339),
		}
		if m.User != nil {
			entry["user"] = map[string]any{
				"id":        m.User.ID,
				"email":     m.User.Email,
				"full_name": m.User.FullName,
				"role":      m.User.Role,
			}
		}
		out[i] = entry
	}
	respond.JSON(w, http.StatusOK, map[string]any{"members": out})
}

func (h *ChannelHandler) load(r *http.Request) (*model.Channel, error) {
	channelID, err := respond.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	var ch model.Channel
	err = h.db.WithContext(r.Context()).Preload("Creator").First(&ch, channelID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("Channel")
		}
		return nil, err
	}
	return &ch, nil
}

func (h *ChannelHandler) isMember(r *http.Request, channelID, userID uint) bool {
	var count int64
	h.db.WithContext(r.Context()).Model(&model.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).Count(&count)
	return count > 0
}

func (h *ChannelHandler) canManage(r *http.Request, ch *model.Channel, id middleware.Identity) bool {
	if auth.HasRole(id.Role, model.RoleAdmin) {
		return true
	}
	var count int64
	h.db.WithContext(r.Context()).Model(&model.ChannelMember{}).
		Where("channel_id = ? AND user_id = ? AND role = ?", ch.ID, id.UserID, model.MemberRoleModerator).
		Count(&count)
	return count > 0
}

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// uniqueJoinCode generates an 8-character code and retries on the unlikely
// collision with an existing channel.
func (h *ChannelHandler) uniqueJoinCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i := range buf {
			buf[i] = joinCodeAlphabet[int(buf[i])%len(joinCodeAlphabet)]
		}
		code := string(buf)

		var count int64
		if err := tx.Model(&model.Channel{}).Where("join_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique join code")
}
