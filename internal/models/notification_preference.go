package models

import "time"

// Preference keys the clients currently persist.
const (
	PrefInstallPromptDismissed = "install_prompt_dismissed"
	PrefPingSoundMuted         = "ping_sound_muted"
)

// NotificationPreference is a per-user dismissal/preference flag. These
// used to live in browser local storage; persisting them server-side keeps
// the choice across devices.
type NotificationPreference struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint   `gorm:"not null;uniqueIndex:idx_user_pref" json:"user_id"`
	Key    string `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_pref" json:"key"`
	Value  bool   `gorm:"not null;default:false" json:"value"`
}
