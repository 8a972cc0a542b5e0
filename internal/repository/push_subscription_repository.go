package repository

import (
	"errors"

	"github.com/amoralabs/amora-backend/internal/models"
	"gorm.io/gorm"
)

type PushSubscriptionRepository struct {
	db *gorm.DB
}

func NewPushSubscriptionRepository(db *gorm.DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{db: db}
}

// Upsert registers a device endpoint for a user. Re-registering the same
// endpoint overwrites the keys in place (last write wins), so browsers
// that rotate their crypto material just re-post.
func (r *PushSubscriptionRepository) Upsert(userID uint, endpoint, p256dh, auth string) error {
	return r.db.Exec(`
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id, endpoint) DO UPDATE
		SET p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth,
			updated_at = NOW()
	`, userID, endpoint, p256dh, auth).Error
}

// Remove deletes a subscription. Removing a row that does not exist is
// not an error.
func (r *PushSubscriptionRepository) Remove(userID uint, endpoint string) error {
	return r.db.Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{}).Error
}

// ListActive returns every registered endpoint for a user. Zero rows just
// means the user has no push-capable device right now.
func (r *PushSubscriptionRepository) ListActive(userID uint) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&subs).Error
	return subs, err
}

// LatestEndpoint returns the most recently written endpoint for a user,
// or "" when the user has none. Clients compare this against the endpoint
// their browser currently holds to detect rotation.
func (r *PushSubscriptionRepository) LatestEndpoint(userID uint) (string, error) {
	var sub models.PushSubscription
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sub.Endpoint, nil
}

// CountForUser returns the number of registered devices for a user.
func (r *PushSubscriptionRepository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PushSubscription{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
