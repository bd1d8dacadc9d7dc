package models

import "time"

// Notification types. The set is closed; the dispatcher only ever emits these.
const (
	NotificationMention            = "mention"
	NotificationReply              = "reply"
	NotificationReaction           = "reaction"
	NotificationPostApproved       = "post_approved"
	NotificationPostRejected       = "post_rejected"
	NotificationPostCreated        = "post_created"
	NotificationGroupInvite        = "group_invite"
	NotificationGroupJoinRequest   = "group_join_request"
	NotificationModerationAction   = "moderation_action"
	NotificationSystemAnnouncement = "system_announcement"
)

// Notification statuses. A notification starts scheduled and flips to
// delivered the moment its recipient reads it; the transition is one-way.
const (
	NotificationScheduled = "scheduled"
	NotificationDelivered = "delivered"
)

// Notification represents a stored user notification (PostgreSQL). Only the
// recipient (via the inbox) or the dispatcher at creation time ever mutates
// a row. ReadAt is the authoritative read marker; Status is kept in lockstep.
type Notification struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	RecipientID  uint       `json:"recipient_id" gorm:"index"`
	Type         string     `json:"type" gorm:"size:30;index"`
	Title        string     `json:"title" gorm:"size:255"`
	Message      string     `json:"message" gorm:"type:text"`
	Data         string     `json:"data,omitempty" gorm:"type:text"` // event-specific JSON payload
	ActionURL    string     `json:"action_url,omitempty"`
	Status       string     `json:"status" gorm:"size:20;default:scheduled"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	ReadAt       *time.Time `json:"read_at"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
}
