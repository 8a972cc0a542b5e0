package repository

import (
	"github.com/amoralabs/amora-backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").Preload("Reactions").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindByDiscussion returns messages newest-first. A cursor of 0 starts
// from the latest; otherwise only messages older than the cursor id load.
func (r *MessageRepository) FindByDiscussion(discussionID uint, cursor uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.Preload("Sender").Preload("Reactions").
		Where("discussion_id = ?", discussionID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}

	var messages []models.Message
	err := q.Order("id DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

// FindPinned returns a discussion's pinned messages oldest-first.
func (r *MessageRepository) FindPinned(discussionID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").Preload("Reactions").
		Where("discussion_id = ? AND is_pinned = true", discussionID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) SetPinned(id uint, pinned bool) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", id).
		Update("is_pinned", pinned).Error
}

// CountUnread implements the read-state fallback: with no read-state row
// every partner-authored message counts, otherwise only those newer than
// last_read_at.
func (r *MessageRepository) CountUnread(discussionID, userID uint) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*)
		FROM messages m
		LEFT JOIN discussion_read_states rs
			ON rs.discussion_id = m.discussion_id AND rs.user_id = ?
		WHERE m.discussion_id = ?
			AND m.deleted_at IS NULL
			AND m.sender_id <> ?
			AND (rs.discussion_id IS NULL OR m.created_at > rs.last_read_at)
	`, userID, discussionID, userID).Scan(&count).Error
	return count, err
}

// AddReaction is idempotent per (message, user, emoji).
func (r *MessageRepository) AddReaction(messageID, userID uint, emoji string) error {
	return r.db.Exec(`
		INSERT INTO reactions (message_id, user_id, emoji, created_at)
		VALUES (?, ?, ?, NOW())
		ON CONFLICT (message_id, user_id, emoji) DO NOTHING
	`, messageID, userID, emoji).Error
}

func (r *MessageRepository) RemoveReaction(messageID, userID uint, emoji string) error {
	return r.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&models.Reaction{}).Error
}
