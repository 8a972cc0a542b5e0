package models

import (
	"time"

	"gorm.io/gorm"
)

type MessageType string

const (
	TextMessage  MessageType = "text"
	ImageMessage MessageType = "image"
	AudioMessage MessageType = "audio"
)

type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Client-side tracking
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"` // UUID for deduplication

	DiscussionID uint       `gorm:"not null;index" json:"discussion_id"`
	Discussion   Discussion `gorm:"foreignKey:DiscussionID" json:"-"`
	SenderID     uint       `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	Sender       User       `gorm:"foreignKey:SenderID" json:"sender"`

	Content     string      `gorm:"type:text;not null" json:"content"`
	MessageType MessageType `gorm:"type:varchar(20);default:'text'" json:"message_type"`

	// Thread reply support: non-nil when this message answers another.
	ParentID *uint `gorm:"index" json:"parent_id"`

	// Pinned messages surface in the discussion's "arguments" view.
	IsPinned bool `gorm:"default:false;index" json:"is_pinned"`

	Reactions []Reaction `gorm:"foreignKey:MessageID" json:"reactions"`
}

type MessageResponse struct {
	ID           uint         `json:"id"`
	ClientID     string       `json:"client_id"`
	DiscussionID uint         `json:"discussion_id"`
	SenderID     uint         `json:"sender_id"`
	Sender       UserResponse `json:"sender"`
	Content      string       `json:"content"`
	MessageType  MessageType  `json:"message_type"`
	ParentID     *uint        `json:"parent_id"`
	IsPinned     bool         `json:"is_pinned"`
	Reactions    []Reaction   `json:"reactions"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	reactions := m.Reactions
	if reactions == nil {
		reactions = []Reaction{}
	}
	return MessageResponse{
		ID:           m.ID,
		ClientID:     m.ClientID,
		DiscussionID: m.DiscussionID,
		SenderID:     m.SenderID,
		Sender:       m.Sender.ToResponse(),
		Content:      m.Content,
		MessageType:  m.MessageType,
		ParentID:     m.ParentID,
		IsPinned:     m.IsPinned,
		Reactions:    reactions,
		CreatedAt:    m.CreatedAt,
	}
}
