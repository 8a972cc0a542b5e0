package repository

import (
	"errors"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"gorm.io/gorm"
)

type DiscussionReadStateRepository struct {
	db *gorm.DB
}

func NewDiscussionReadStateRepository(db *gorm.DB) *DiscussionReadStateRepository {
	return &DiscussionReadStateRepository{db: db}
}

// Upsert records that the user has read the discussion up to now.
// last_read_message_id only moves forward; last_read_at always advances.
func (r *DiscussionReadStateRepository) Upsert(discussionID, userID uint, lastReadMessageID *uint, at time.Time) error {
	return r.db.Exec(`
		INSERT INTO discussion_read_states (discussion_id, user_id, last_read_message_id, last_read_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (discussion_id, user_id) DO UPDATE
		SET last_read_message_id = GREATEST(
				COALESCE(discussion_read_states.last_read_message_id, 0),
				COALESCE(EXCLUDED.last_read_message_id, 0)
			),
			last_read_at = GREATEST(discussion_read_states.last_read_at, EXCLUDED.last_read_at),
			updated_at = NOW()
	`, discussionID, userID, lastReadMessageID, at).Error
}

// Get returns nil without error when the user has never read the
// discussion; callers fall back to the "everything unread" path.
func (r *DiscussionReadStateRepository) Get(discussionID, userID uint) (*models.DiscussionReadState, error) {
	var state models.DiscussionReadState
	err := r.db.Where("discussion_id = ? AND user_id = ?", discussionID, userID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *DiscussionReadStateRepository) Delete(discussionID, userID uint) error {
	return r.db.Where("discussion_id = ? AND user_id = ?", discussionID, userID).
		Delete(&models.DiscussionReadState{}).Error
}
