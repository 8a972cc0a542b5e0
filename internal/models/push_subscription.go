package models

import "time"

// PushSubscription holds one browser push registration. A user has one
// row per device endpoint; re-registering the same endpoint overwrites
// the keys in place.
type PushSubscription struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   uint   `gorm:"not null;uniqueIndex:idx_user_endpoint" json:"user_id"`
	Endpoint string `gorm:"type:text;not null;uniqueIndex:idx_user_endpoint" json:"endpoint"`
	P256dh   string `gorm:"type:text;not null" json:"p256dh"`
	Auth     string `gorm:"type:text;not null" json:"auth"`
}
