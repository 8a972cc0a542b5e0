package repository

import (
	"errors"

	"github.com/amoralabs/amora-backend/internal/models"
	"gorm.io/gorm"
)

type NotificationPreferenceRepository struct {
	db *gorm.DB
}

func NewNotificationPreferenceRepository(db *gorm.DB) *NotificationPreferenceRepository {
	return &NotificationPreferenceRepository{db: db}
}

func (r *NotificationPreferenceRepository) Upsert(userID uint, key string, value bool) error {
	return r.db.Exec(`
		INSERT INTO notification_preferences (user_id, key, value, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`, userID, key, value).Error
}

// Get returns false for a flag the user never set.
func (r *NotificationPreferenceRepository) Get(userID uint, key string) (bool, error) {
	var pref models.NotificationPreference
	err := r.db.Where("user_id = ? AND key = ?", userID, key).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return pref.Value, nil
}

func (r *NotificationPreferenceRepository) ListForUser(userID uint) ([]models.NotificationPreference, error) {
	var prefs []models.NotificationPreference
	err := r.db.Where("user_id = ?", userID).Find(&prefs).Error
	return prefs, err
}
