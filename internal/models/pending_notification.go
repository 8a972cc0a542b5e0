package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType identifies which template pool renders the push text.
type NotificationType string

const (
	NotifNewMessage       NotificationType = "new_message"
	NotifMultipleMessages NotificationType = "multiple_messages"
	NotifThreadReply      NotificationType = "thread_reply"
	NotifStatusChange     NotificationType = "status_change"
	NotifPinnedArgument   NotificationType = "pinned_argument"
	NotifReaction         NotificationType = "reaction"
	NotifPing             NotificationType = "ping"
)

// PendingNotification is a not-yet-dispatched notification that later
// events may still merge into. At most one unsent row exists per
// (discussion, recipient); message_count only ever grows while unsent.
// Once is_sent flips the row is never mutated again.
type PendingNotification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Stable id carried through dispatch and delivery analytics.
	PushID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"push_id"`

	DiscussionID uint `gorm:"not null;index:idx_pending_discussion_recipient" json:"discussion_id"`
	RecipientID  uint `gorm:"not null;index:idx_pending_discussion_recipient" json:"recipient_id"`
	SenderID     uint `gorm:"not null" json:"sender_id"`

	Type               NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	MessageCount       int              `gorm:"not null;default:1" json:"message_count"`
	LastMessageContent string           `gorm:"type:text" json:"last_message_content"`
	ThreadContext      string           `gorm:"type:text" json:"thread_context"`

	IsSent bool `gorm:"not null;default:false;index" json:"is_sent"`
}
