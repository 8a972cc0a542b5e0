package models

import "time"

// DiscussionReadState tracks how far a user has read into a discussion.
// Absence of a row means "never read": the unread count then covers every
// message the partner ever sent in that discussion.
type DiscussionReadState struct {
	DiscussionID      uint      `gorm:"primaryKey" json:"discussion_id"`
	UserID            uint      `gorm:"primaryKey" json:"user_id"`
	LastReadMessageID *uint     `json:"last_read_message_id"`
	LastReadAt        time.Time `gorm:"not null" json:"last_read_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
