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

// MembershipHandler handles /api/memberships/* routes.
type MembershipHandler struct {
	db *gorm.DB
}

// NewMembershipHandler creates a MembershipHandler.
func NewMembershipHandler(db *gorm.DB) *MembershipHandler {
	return &MembershipHandler{db: db}
}

// Join handles POST /api/memberships/join. Unknown channel → 404, private
// channel → 403, already a member → 409.
func (h *MembershipHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.JoinChannel
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var ch model.Channel
	if err := h.db.WithContext(ctx).First(&ch, req.ChannelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, apierr.NotFound("Channel"))
			return
		}
		respond.Error(w, err)
		return
	}
	if ch.IsPrivate {
		respond.Error(w, apierr.Forbidden("Cannot join a private channel without an invitation"))
		return
	}

	var count int64
	if err := h.db.WithContext(ctx).Model(&model.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", ch.ID, id.UserID).Count(&count).Error; err != nil {
		respond.Error(w, err)
		return
	}
	if count > 0 {
		respond.Error(w, apierr.Conflict("Already a member of this channel"))
		return
	}

	m := model.ChannelMember{UserID: id.UserID, ChannelID: ch.ID, Role: model.MemberRoleMember}
	if err := h.db.WithContext(ctx).Create(&m).Error; err != nil {
		// A concurrent join can slip past the count check; the unique index
		// on (user, channel) still rejects it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = apierr.Conflict("Already a member of this channel")
		}
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"id":         m.ID,
		"user_id":    m.UserID,
		"channel_id": m.ChannelID,
		"role":       m.Role,
		"joined_at":  m.JoinedAt.UTC().Format(time.RFC3339),
	})
}

// Leave handles POST /api/memberships/leave.
func (h *MembershipHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.LeaveChannel
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	res := h.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", req.ChannelID, id.UserID).
		Delete(&model.ChannelMember{})
	if res.Error != nil {
		respond.Error(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respond.Error(w, apierr.NotFound("Membership"))
		return
	}
	respond.Message(w, http.StatusOK, "Left channel")
}

// MyChannels handles GET /api/memberships/my-channels.
func (h *MembershipHandler) MyChannels(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var memberships []model.ChannelMember
	if err := h.db.WithContext(r.Context()).Preload("Channel").
		Where("user_id = ?", id.UserID).Order("joined_at").Find(&memberships).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, 0, len(memberships))
	for i := range memberships {
		m := &memberships[i]
		if m.Channel == nil {
			continue
		}
		out = append(out, map[string]any{
			"id":         m.ID,
			"user_id":    m.UserID,
			"channel_id": m.ChannelID,
			"role":       m.Role,
			"joined_at":  m.JoinedAt.UTC().Format(time.RFC3339),
			"channel": map[string]any{
				"id":           m.Channel.ID,
				"name":         m.Channel.Name,
				"description":  m.Channel.Description,
				"channel_type": m.Channel.ChannelType,
			},
		})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"memberships": out})
}
