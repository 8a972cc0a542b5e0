package models

import "time"

// Reaction is a single emoji response to a message. One row per
// (message, user, emoji); repeating the same reaction changes nothing.
type Reaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	MessageID uint   `gorm:"not null;uniqueIndex:idx_message_user_emoji" json:"message_id"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_message_user_emoji" json:"user_id"`
	Emoji     string `gorm:"type:varchar(16);not null;uniqueIndex:idx_message_user_emoji" json:"emoji"`
}
