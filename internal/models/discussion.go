package models

import (
	"time"

	"gorm.io/gorm"
)

type DiscussionStatus string

const (
	DiscussionOpen     DiscussionStatus = "open"
	DiscussionResolved DiscussionStatus = "resolved"
	DiscussionArchived DiscussionStatus = "archived"
)

// Discussion is one shared thread between the two partners.
type Discussion struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title     string           `gorm:"not null" json:"title"`
	CreatedBy uint             `gorm:"not null;index" json:"created_by"`
	Status    DiscussionStatus `gorm:"type:varchar(20);default:'open'" json:"status"`

	// Bumped on every message so the discussion list can sort without
	// joining the message table.
	LastActivityAt time.Time `gorm:"index" json:"last_activity_at"`
}

type DiscussionResponse struct {
	ID             uint             `json:"id"`
	Title          string           `json:"title"`
	CreatedBy      uint             `json:"created_by"`
	Status         DiscussionStatus `json:"status"`
	LastActivityAt time.Time        `json:"last_activity_at"`
	UnreadCount    int64            `json:"unread_count"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (d *Discussion) ToResponse() DiscussionResponse {
	return DiscussionResponse{
		ID:             d.ID,
		Title:          d.Title,
		CreatedBy:      d.CreatedBy,
		Status:         d.Status,
		LastActivityAt: d.LastActivityAt,
		CreatedAt:      d.CreatedAt,
	}
}
