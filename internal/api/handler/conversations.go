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
	"github.com/d9705996/hrportal/internal/model"
	"gorm.io/gorm"
)

// ConversationHandler handles /api/direct-conversations/* routes.
type ConversationHandler struct {
	db *gorm.DB
}

// NewConversationHandler creates a ConversationHandler.
func NewConversationHandler(db *gorm.DB) *ConversationHandler {
	return &ConversationHandler{db: db}
}

// participantKey builds the canonical pair key "lowID:highID", making the
// two-party conversation unique regardless of who starts it.
func participantKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func participantJSON(p *model.DirectConversationParticipant) map[string]any {
	out := map[string]any{
		"id":                   p.ID,
		"user_id":              p.UserID,
		"joined_at":            p.JoinedAt.UTC().Format(time.RFC3339),
		"last_read_message_id": p.LastReadMessageID,
	}
	if p.User != nil {
		out["user"] = map[string]any{
			"id":         p.User.ID,
			"full_name":  p.User.FullName,
			"email":      p.User.Email,
			"department": p.User.Department,
		}
	}
	return out
}

func messageJSON(m *model.DirectMessage, attachments []map[string]any) map[string]any {
	out := map[string]any{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"sender_id":       m.SenderID,
		"content":         m.Content,
		"created_at":      m.CreatedAt.UTC().Format(time.RFC3339),
		"edited_at":       timePtr(m.EditedAt),
		"attachments":     attachments,
	}
	if m.Sender != nil {
		out["sender"] = map[string]any{
			"id":         m.Sender.ID,
			"full_name":  m.Sender.FullName,
			"email":      m.Sender.Email,
			"department": m.Sender.Department,
		}
	}
	return out
}

// conversationJSON shapes one conversation for the caller, including the
// latest message and whether it is still unread.
func (h *ConversationHandler) conversationJSON(c *model.DirectConversation, callerID uint, last *model.DirectMessage) map[string]any {
	var membership *model.DirectConversationParticipant
	participants := make([]map[string]any, len(c.Participants))
	for i := range c.Participants {
		p := &c.Participants[i]
		participants[i] = participantJSON(p)
		if p.UserID == callerID {
			membership = p
		}
	}

	out := map[string]any{
		"id":              c.ID,
		"topic":           c.Topic,
		"created_by":      c.CreatedBy,
		"created_at":      c.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":      c.UpdatedAt.UTC().Format(time.RFC3339),
		"last_message_at": timePtr(c.LastMessageAt),
		"participants":    participants,
	}
	if last != nil {
		out["last_message"] = messageJSON(last, nil)
		unread := membership == nil || membership.LastReadMessageID == nil || last.ID > *membership.LastReadMessageID
		out["has_unread"] = unread
	} else {
		out["last_message"] = nil
		out["has_unread"] = false
	}
	return out
}

func (h *ConversationHandler) lastMessage(ctx *gorm.DB, conversationID uint) (*model.DirectMessage, error) {
	var m model.DirectMessage
	err := ctx.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Order("id DESC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// access loads the conversation and the caller's membership row. Missing
// conversation → 404; non-participant → 403.
func (h *ConversationHandler) access(r *http.Request, callerID uint) (*model.DirectConversation, *model.DirectConversationParticipant, error) {
	conversationID, err := respond.PathID(r, "id")
	if err != nil {
		return nil, nil, err
	}
	ctx := r.Context()
	var c model.DirectConversation
	if err := h.db.WithContext(ctx).First(&c, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.NotFound("Conversation")
		}
		return nil, nil, err
	}
	var p model.DirectConversationParticipant
	err = h.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", c.ID, callerID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apierr.Forbidden("You are not part of this conversation")
	}
	if err != nil {
		return nil, nil, err
	}
	return &c, &p, nil
}

// List handles GET /api/direct-conversations: the caller's threads, most
// recently active first.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	skip, limit := respond.Pagination(r)
	ctx := r.Context()

	member := h.db.WithContext(ctx).Model(&model.DirectConversationParticipant{}).
		Select("conversation_id").Where("user_id = ?", id.UserID)

	var total int64
	if err := h.db.WithContext(ctx).Model(&model.DirectConversation{}).
		Where("id IN (?)", member).Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}

	var conversations []model.DirectConversation
	if err := h.db.WithContext(ctx).Preload("Participants.User").
		Where("id IN (?)", member).
		Order("last_message_at DESC").Order("updated_at DESC").
		Offset(skip).Limit(limit).Find(&conversations).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(conversations))
	for i := range conversations {
		last, err := h.lastMessage(h.db.WithContext(ctx), conversations[i].ID)
		if err != nil {
			respond.Error(w, err)
			return
		}
		out[i] = h.conversationJSON(&conversations[i], id.UserID, last)
	}
	respond.JSON(w, http.StatusOK, listEnvelope("conversations", out, total, skip, limit))
}

// Start handles POST /api/direct-conversations. Reuses the existing thread
// for the pair when one exists (200), otherwise creates it (201).
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req request.StartConversation
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if req.TargetUserID == id.UserID {
		respond.Error(w, apierr.Forbidden("Cannot start a conversation with yourself"))
		return
	}

	ctx := r.Context()
	var target model.User
	if err := h.db.WithContext(ctx).First(&target, req.TargetUserID).Error; err != nil || !target.IsActive {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, err)
			return
		}
		respond.Error(w, apierr.NotFound("User"))
		return
	}

	key := participantKey(id.UserID, target.ID)
	status := http.StatusOK
	var c model.DirectConversation
	err := h.db.WithContext(ctx).Preload("Participants.User").
		Where("participant_key = ?", key).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = model.DirectConversation{
			ParticipantKey: key,
			Topic:          req.Topic,
			CreatedBy:      id.UserID,
			Participants: []model.DirectConversationParticipant{
				{UserID: id.UserID},
				{UserID: target.ID},
			},
		}
		err = h.db.WithContext(ctx).Create(&c).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Both parties started the thread at once; the unique key keeps
			// one row and everyone reuses it.
			err = h.db.WithContext(ctx).Preload("Participants.User").
				Where("participant_key = ?", key).First(&c).Error
		} else if err == nil {
			status = http.StatusCreated
			err = h.db.WithContext(ctx).Preload("Participants.User").First(&c, c.ID).Error
		}
	}
	if err != nil {
		respond.Error(w, err)
		return
	}

	last, err := h.lastMessage(h.db.WithContext(ctx), c.ID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, status, h.conversationJSON(&c, id.UserID, last))
}

// ListMessages handles GET /api/direct-conversations/{id}/messages, oldest
// first, with any attached files.
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	c, _, err := h.access(r, id.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	skip, limit := respond.Pagination(r)
	ctx := r.Context()

	var messages []model.DirectMessage
	if err := h.db.WithContext(ctx).Preload("Sender").
		Where("conversation_id = ?", c.ID).
		Order("created_at").Order("id").
		Offset(skip).Limit(limit).Find(&messages).Error; err != nil {
		respond.Error(w, err)
		return
	}

	attachments, err := h.attachmentsFor(ctx, messages)
	if err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(messages))
	for i := range messages {
		out[i] = messageJSON(&messages[i], attachments[messages[i].ID])
	}
	respond.JSON(w, http.StatusOK, map[string]any{"messages": out})
}

func (h *ConversationHandler) attachmentsFor(ctx context.Context, messages []model.DirectMessage) (map[uint][]map[string]any, error) {
	out := make(map[uint][]map[string]any)
	if len(messages) == 0 {
		return out, nil
	}
	ids := make([]uint, len(messages))
	for i := range messages {
		ids[i] = messages[i].ID
	}
	var files []model.File
	if err := h.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id IN ?", "direct_message", ids).
		Find(&files).Error; err != nil {
		return nil, err
	}
	for i := range files {
		f := &files[i]
		if f.EntityID == nil {
			continue
		}
		out[*f.EntityID] = append(out[*f.EntityID], map[string]any{
			"id":                f.ID,
			"original_filename": f.OriginalFilename,
			"content_type":      f.ContentType,
			"size":              f.Size,
		})
	}
	return out, nil
}

// SendMessage handles POST /api/direct-conversations/{id}/messages. Bumps
// the thread's last-message time, advances the sender's read cursor, and
// notifies the other party.
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	c, p, err := h.access(r, id.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.SendMessage
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	var sender model.User
	if err := h.db.WithContext(ctx).First(&sender, id.UserID).Error; err != nil {
		respond.Error(w, err)
		return
	}

	msg := model.DirectMessage{
		ConversationID: c.ID,
		SenderID:       id.UserID,
		Content:        req.Content,
	}
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		if len(req.Attachments) > 0 {
			entity := "direct_message"
			if err := tx.Model(&model.File{}).
				Where("id IN ? AND uploaded_by = ? AND entity_type IS NULL", req.Attachments, id.UserID).
				Updates(map[string]any{"entity_type": entity, "entity_id": msg.ID}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(c).Update("last_message_at", msg.CreatedAt).Error; err != nil {
			return err
		}
		if err := tx.Model(p).Update("last_read_message_id", msg.ID).Error; err != nil {
			return err
		}

		var others []model.DirectConversationParticipant
		if err := tx.Where("conversation_id = ? AND user_id <> ?", c.ID, id.UserID).
			Find(&others).Error; err != nil {
			return err
		}
		preview := req.Content
		if runes := []rune(preview); len(runes) > 140 {
			preview = string(runes[:140])
		}
		title := fmt.Sprintf("New message from %s", sender.FullName)
		for i := range others {
			if err := notify(tx, others[i].UserID, model.NotificationDirectMessage,
				title, preview, "direct_conversation", c.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	msg.Sender = &sender
	attachments, err := h.attachmentsFor(ctx, []model.DirectMessage{msg})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, messageJSON(&msg, attachments[msg.ID]))
}

// ReadReceipt handles PATCH /api/direct-conversations/{id}/read-receipt.
// Without an explicit message id the cursor advances to the latest message.
func (h *ConversationHandler) ReadReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	c, p, err := h.access(r, id.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	var req request.MarkConversationRead
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	cursor := req.LastReadMessageID
	if cursor != nil {
		var count int64
		if err := h.db.WithContext(ctx).Model(&model.DirectMessage{}).
			Where("id = ? AND conversation_id = ?", *cursor, c.ID).
			Count(&count).Error; err != nil {
			respond.Error(w, err)
			return
		}
		if count == 0 {
			respond.Error(w, apierr.NotFound("Message"))
			return
		}
	} else {
		last, err := h.lastMessage(h.db.WithContext(ctx), c.ID)
		if err != nil {
			respond.Error(w, err)
			return
		}
		if last != nil {
			cursor = &last.ID
		}
	}

	if err := h.db.WithContext(ctx).Model(p).
		Update("last_read_message_id", cursor).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":              true,
		"last_read_message_id": cursor,
	})
}

// Recipients handles GET /api/direct-conversations/recipients: active users
// the caller can start a thread with, optionally filtered by q.
func (h *ConversationHandler) Recipients(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	q := h.db.WithContext(r.Context()).Model(&model.User{}).
		Where("is_active = ? AND id <> ?", true, id.UserID)
	if term := r.URL.Query().Get("q"); term != "" {
		like := "%" + term + "%"
		q = q.Where("full_name LIKE ? OR email LIKE ? OR employee_id LIKE ?", like, like, like)
	}

	var users []model.User
	if err := q.Order("full_name").Limit(50).Find(&users).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(users))
	for i := range users {
		u := &users[i]
		out[i] = map[string]any{
			"id":         u.ID,
			"full_name":  u.FullName,
			"email":      u.Email,
			"department": u.Department,
			"role":       u.Role,
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"users": out})
}
