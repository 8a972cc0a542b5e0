package models

import "time"

type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// DeliveryRecord logs one push attempt against one endpoint. Rows are
// immutable once written except for clicked_at, which is set at most once.
type DeliveryRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	NotificationID   string           `gorm:"type:varchar(36);not null;index" json:"notification_id"`
	NotificationType NotificationType `gorm:"type:varchar(32);not null;index" json:"notification_type"`
	Endpoint         string           `gorm:"type:text;not null" json:"endpoint"`

	Status    DeliveryStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	SentAt    time.Time      `gorm:"not null;index" json:"sent_at"`
	ClickedAt *time.Time     `json:"clicked_at"`
}
