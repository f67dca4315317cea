package request

import "github.com/d9705996/hrportal/internal/apierr"

// StartConversation is the body for POST /api/direct-conversations.
type StartConversation struct {
	TargetUserID uint    `json:"target_user_id"`
	Topic        *string `json:"topic,omitempty"`
}

func (b *StartConversation) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.TargetUserID == 0 {
		errs.add("target_user_id", "Must be a positive integer")
	}
	if b.Topic != nil && (*b.Topic == "" || len(*b.Topic) > 100) {
		errs.add("topic", "Must be between 1 and 100 characters")
	}
	return errs
}

// SendMessage is the body for POST /api/direct-conversations/{id}/messages.
type SendMessage struct {
	Content     string `json:"content"`
	Attachments []uint `json:"attachments,omitempty"`
}

func (b *SendMessage) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.Content == "" || len(b.Content) > 4000 {
		errs.add("content", "Must be between 1 and 4000 characters")
	}
	return errs
}

// MarkConversationRead is the body for
// PATCH /api/direct-conversations/{id}/read-receipt. A nil id means
// "advance to the latest message".
type MarkConversationRead struct {
	LastReadMessageID *uint `json:"last_read_message_id,omitempty"`
}

func (b *MarkConversationRead) Validate() []apierr.FieldError {
	var errs fieldErrors
	if b.LastReadMessageID != nil && *b.LastReadMessageID == 0 {
		errs.add("last_read_message_id", "Must be a positive integer")
	}
	return errs
}
