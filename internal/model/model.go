// Package model contains GORM model definitions shared across packages.
// All models are driver-agnostic: they work with both PostgreSQL and SQLite.
package model

import (
	"time"
)

// Role values, ordered by privilege. VENDOR sits outside the hierarchy and
// is only ever matched by equality on vendor-facing routes.
const (
	RoleEmployee   = "EMPLOYEE"
	RoleHR         = "HR"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
	RoleVendor     = "VENDOR"
)

// Feedback status values.
const (
	FeedbackSubmitted   = "SUBMITTED"
	FeedbackUnderReview = "UNDER_REVIEW"
	FeedbackInProgress  = "IN_PROGRESS"
	FeedbackResolved    = "RESOLVED"
	FeedbackClosed      = "CLOSED"
)

// Feedback priority values.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Vendor status values on feedback forwarded to an external vendor.
const (
	VendorPending          = "PENDING"
	VendorReplied          = "VENDOR_REPLIED"
	VendorAwaitingApproval = "AWAITING_SUPERADMIN"
	VendorApproved         = "APPROVED"
	VendorRejected         = "REJECTED"
	VendorPastDue          = "PAST_DUE"
)

// Channel membership roles.
const (
	MemberRoleMember    = "MEMBER"
	MemberRoleModerator = "MODERATOR"
)

// Notification types.
const (
	NotificationFeedback         = "FEEDBACK"
	NotificationAnnouncement     = "ANNOUNCEMENT"
	NotificationBirthdayInvite   = "BIRTHDAY_INVITE"
	NotificationVendorReply      = "VENDOR_REPLY"
	NotificationDirectMessage    = "DIRECT_MESSAGE"
	NotificationSuperAdminReview = "SUPERADMIN_REVIEW"
	NotificationSystem           = "SYSTEM"
)

// RSVP status values on birthday registrations.
const (
	RsvpPending  = "pending"
	RsvpGoing    = "going"
	RsvpNotGoing = "not_going"
)

// User is the GORM model for the users table.
type User struct {
	ID           uint    `gorm:"primaryKey"`
	EmployeeID   string  `gorm:"type:text;not null;uniqueIndex"`
	Email        string  `gorm:"type:text;not null;uniqueIndex"`
	FullName     string  `gorm:"type:text;not null"`
	PasswordHash string  `gorm:"type:text;not null"`
	Role         string  `gorm:"type:text;not null;default:'EMPLOYEE';index"`
	Department   *string `gorm:"type:text"`
	DateOfBirth  *time.Time
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// Feedback is a ticket-like record submitted by an employee.
type Feedback struct {
	ID                   uint    `gorm:"primaryKey"`
	Title                string  `gorm:"type:text;not null"`
	Description          string  `gorm:"type:text;not null"`
	Category             string  `gorm:"type:text;not null;default:'GENERAL';index"`
	Status               string  `gorm:"type:text;not null;default:'SUBMITTED';index"`
	Priority             string  `gorm:"type:text;not null;default:'MEDIUM'"`
	IsAnonymous          bool    `gorm:"not null;default:false"`
	SubmittedBy          uint    `gorm:"not null;index"`
	AssignedTo           *uint   `gorm:"index"`
	VendorAssignedTo     *uint   `gorm:"index"`
	VendorStatus         *string `gorm:"type:text"`
	VendorDueAt          *time.Time
	VendorLastResponseAt *time.Time
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`

	Submitter *User `gorm:"foreignKey:SubmittedBy"`
	Assignee  *User `gorm:"foreignKey:AssignedTo"`
}

// FeedbackComment is a comment on a feedback thread. Internal comments are
// visible to staff only.
type FeedbackComment struct {
	ID         uint      `gorm:"primaryKey"`
	FeedbackID uint      `gorm:"not null;index"`
	UserID     uint      `gorm:"not null"`
	Comment    string    `gorm:"type:text;not null"`
	IsInternal bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID"`
}

// Channel is a discussion channel with a membership roster.
type Channel struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Description *string   `gorm:"type:text"`
	ChannelType string    `gorm:"type:text;not null;default:'general'"`
	IsPrivate   bool      `gorm:"not null;default:false"`
	JoinCode    string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedBy   uint      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	Creator *User           `gorm:"foreignKey:CreatedBy"`
	Members []ChannelMember `gorm:"foreignKey:ChannelID"`
}

// ChannelMember is one user's membership in one channel. The composite
// unique index enforces at most one row per (user, channel) pair.
type ChannelMember struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_channel_member"`
	ChannelID uint      `gorm:"not null;uniqueIndex:idx_channel_member"`
	Role      string    `gorm:"type:text;not null;default:'MEMBER'"`
	JoinedAt  time.Time `gorm:"not null;autoCreateTime"`

	User    *User    `gorm:"foreignKey:UserID"`
	Channel *Channel `gorm:"foreignKey:ChannelID"`
}

// Announcement is company-wide content with optional expiry.
// Active means IsActive and (ExpiresAt is nil or in the future).
type Announcement struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"type:text;not null"`
	Content   string `gorm:"type:text;not null"`
	Category  string `gorm:"type:text;not null;default:'OTHER';index"`
	IsPinned  bool   `gorm:"not null;default:false"`
	IsActive  bool   `gorm:"not null;default:true"`
	ExpiresAt *time.Time
	CreatedBy uint      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Creator *User `gorm:"foreignKey:CreatedBy"`
}

// Notification is a per-user record; only the owning user may read,
// mutate, or delete it.
type Notification struct {
	ID                uint    `gorm:"primaryKey"`
	UserID            uint    `gorm:"not null;index"`
	Type              string  `gorm:"type:text;not null;index"`
	Title             string  `gorm:"type:text;not null"`
	Message           string  `gorm:"type:text;not null"`
	IsRead            bool    `gorm:"not null;default:false"`
	RelatedEntityType *string `gorm:"type:text"`
	RelatedEntityID   *uint
	CreatedAt         time.Time `gorm:"not null"`
}

// BirthdayEvent is the single celebration event for a (year, month) pair.
type BirthdayEvent struct {
	ID          uint      `gorm:"primaryKey"`
	Year        int       `gorm:"not null;uniqueIndex:idx_birthday_month"`
	Month       int       `gorm:"not null;uniqueIndex:idx_birthday_month"`
	EventDate   time.Time `gorm:"not null"`
	Title       string    `gorm:"type:text;not null"`
	Description *string   `gorm:"type:text"`
	Location    *string   `gorm:"type:text"`
	CreatedBy   uint      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	Creator       *User                  `gorm:"foreignKey:CreatedBy"`
	Registrations []BirthdayRegistration `gorm:"foreignKey:EventID"`
}

// BirthdayRegistration is one user's RSVP record for a birthday event.
type BirthdayRegistration struct {
	ID         uint      `gorm:"primaryKey"`
	EventID    uint      `gorm:"not null;uniqueIndex:idx_birthday_registration"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_birthday_registration"`
	RsvpStatus string    `gorm:"type:text;not null;default:'pending'"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID"`
}

// DirectConversation is a two-party message thread. ParticipantKey is the
// sorted pair "lowID:highID", so at most one conversation exists per pair.
type DirectConversation struct {
	ID             uint    `gorm:"primaryKey"`
	ParticipantKey string  `gorm:"type:text;not null;uniqueIndex"`
	Topic          *string `gorm:"type:text"`
	CreatedBy      uint    `gorm:"not null"`
	LastMessageAt  *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`

	Participants []DirectConversationParticipant `gorm:"foreignKey:ConversationID"`
	Messages     []DirectMessage                 `gorm:"foreignKey:ConversationID"`
}

// DirectConversationParticipant tracks one user's membership and read cursor
// in one conversation.
type DirectConversationParticipant struct {
	ID                uint `gorm:"primaryKey"`
	ConversationID    uint `gorm:"not null;uniqueIndex:idx_conversation_participant"`
	UserID            uint `gorm:"not null;uniqueIndex:idx_conversation_participant"`
	LastReadMessageID *uint
	JoinedAt          time.Time `gorm:"not null;autoCreateTime"`

	User *User `gorm:"foreignKey:UserID"`
}

// DirectMessage is one message inside a conversation.
type DirectMessage struct {
	ID             uint   `gorm:"primaryKey"`
	ConversationID uint   `gorm:"not null;index"`
	SenderID       uint   `gorm:"not null"`
	Content        string `gorm:"type:text;not null"`
	EditedAt       *time.Time
	CreatedAt      time.Time `gorm:"not null"`

	Sender *User `gorm:"foreignKey:SenderID"`
}

// AuditLog records privileged actions for the admin trail and the per-feedback
// timeline. UserID is nullable so system-originated entries survive user
// deletion.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     *uint     `gorm:"index"`
	Action     string    `gorm:"type:text;not null"`
	EntityType *string   `gorm:"type:text;index:idx_audit_entity"`
	EntityID   *uint     `gorm:"index:idx_audit_entity"`
	Details    *string   `gorm:"type:text"`
	IPAddress  *string   `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID"`
}

// File is uploaded-asset metadata. The blob itself lives under the upload
// directory at StoragePath.
type File struct {
	ID               uint      `gorm:"primaryKey"`
	Filename         string    `gorm:"type:text;not null"`
	OriginalFilename string    `gorm:"type:text;not null"`
	StoragePath      string    `gorm:"type:text;not null"`
	ContentType      string    `gorm:"type:text;not null"`
	Size             int64     `gorm:"not null"`
	ScannerStatus    string    `gorm:"type:text;not null;default:'clean'"`
	EntityType       *string   `gorm:"type:text;index:idx_file_entity"`
	EntityID         *uint     `gorm:"index:idx_file_entity"`
	UploadedBy       uint      `gorm:"not null;index"`
	CreatedAt        time.Time `gorm:"not null"`

	Uploader *User `gorm:"foreignKey:UploadedBy"`
}
