package repository

import (
	"errors"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PendingNotificationRepository struct {
	db *gorm.DB
}

func NewPendingNotificationRepository(db *gorm.DB) *PendingNotificationRepository {
	return &PendingNotificationRepository{db: db}
}

// GroupOrCreateInput carries one incoming activity event.
type GroupOrCreateInput struct {
	DiscussionID  uint
	RecipientID   uint
	SenderID      uint
	Type          models.NotificationType
	Content       string
	ThreadContext string
}

// GroupOrCreate merges the event into the recipient's unsent notification
// for the discussion when one exists, is younger than window, and the
// event is a plain new_message; otherwise it creates a fresh row. Both
// paths are single statements so two near-simultaneous events can never
// both observe "no pending row". Returns the row and whether it grouped.
func (r *PendingNotificationRepository) GroupOrCreate(in GroupOrCreateInput, window time.Duration) (*models.PendingNotification, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if in.Type == models.NotifNewMessage {
			grouped, err := r.tryGroup(in, window)
			if err != nil {
				return nil, false, err
			}
			if grouped != nil {
				return grouped, true, nil
			}
		}

		// Retire any unsent row that aged out of the window so the
		// partial unique index admits a fresh one.
		if err := r.db.Exec(`
			UPDATE pending_notifications
			SET is_sent = true, updated_at = NOW()
			WHERE discussion_id = ? AND recipient_id = ?
				AND is_sent = false AND deleted_at IS NULL
				AND created_at <= NOW() - make_interval(secs => ?)
		`, in.DiscussionID, in.RecipientID, window.Seconds()).Error; err != nil {
			return nil, false, err
		}

		created, err := r.tryCreate(in)
		if err != nil {
			return nil, false, err
		}
		if created != nil {
			return created, false, nil
		}
		// Lost the race against a concurrent create: the other event's
		// row now exists, so the grouping path should catch it next pass.
	}

	// Still conflicting after a retry. Treat the event as a standalone
	// notification: an already-sent row never collides with the partial
	// index, and the caller still gets something to dispatch.
	row, err := r.CreateSent(in)
	if err != nil {
		return nil, false, err
	}
	return row, false, nil
}

// CreateSent inserts a row that is already frozen. Used for one-shot
// notifications that never group, such as the ambient ping, and as the
// fallback when the aggregation upsert keeps losing its race.
func (r *PendingNotificationRepository) CreateSent(in GroupOrCreateInput) (*models.PendingNotification, error) {
	row := &models.PendingNotification{
		PushID:             uuid.New().String(),
		DiscussionID:       in.DiscussionID,
		RecipientID:        in.RecipientID,
		SenderID:           in.SenderID,
		Type:               in.Type,
		MessageCount:       1,
		LastMessageContent: in.Content,
		ThreadContext:      in.ThreadContext,
		IsSent:             true,
	}
	if err := r.db.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *PendingNotificationRepository) tryGroup(in GroupOrCreateInput, window time.Duration) (*models.PendingNotification, error) {
	var rows []models.PendingNotification
	err := r.db.Raw(`
		UPDATE pending_notifications
		SET message_count = message_count + 1,
			last_message_content = ?,
			type = ?,
			updated_at = NOW()
		WHERE discussion_id = ? AND recipient_id = ?
			AND is_sent = false AND deleted_at IS NULL
			AND type IN ('new_message', 'multiple_messages')
			AND created_at > NOW() - make_interval(secs => ?)
		RETURNING *
	`, in.Content, string(models.NotifMultipleMessages),
		in.DiscussionID, in.RecipientID, window.Seconds()).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *PendingNotificationRepository) tryCreate(in GroupOrCreateInput) (*models.PendingNotification, error) {
	var rows []models.PendingNotification
	err := r.db.Raw(`
		INSERT INTO pending_notifications
			(push_id, discussion_id, recipient_id, sender_id, type,
			 message_count, last_message_content, thread_context, is_sent,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, false, NOW(), NOW())
		ON CONFLICT (discussion_id, recipient_id) WHERE is_sent = false AND deleted_at IS NULL
		DO NOTHING
		RETURNING *
	`, uuid.New().String(), in.DiscussionID, in.RecipientID, in.SenderID,
		string(in.Type), in.Content, in.ThreadContext).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// MarkSent freezes a notification row. Unsent rows become immutable from
// here on; grouping will no longer touch them.
func (r *PendingNotificationRepository) MarkSent(id uint) error {
	return r.db.Model(&models.PendingNotification{}).
		Where("id = ?", id).
		Update("is_sent", true).Error
}

// FindUnsent returns the mutable row for a (discussion, recipient) pair,
// or gorm.ErrRecordNotFound.
func (r *PendingNotificationRepository) FindUnsent(discussionID, recipientID uint) (*models.PendingNotification, error) {
	var row models.PendingNotification
	err := r.db.Where("discussion_id = ? AND recipient_id = ? AND is_sent = false", discussionID, recipientID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CountSentSince counts notifications of a type created by a sender since
// the given instant. The ambient ping limiter derives its daily quota
// from this persisted log.
func (r *PendingNotificationRepository) CountSentSince(senderID uint, typ models.NotificationType, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.PendingNotification{}).
		Where("sender_id = ? AND type = ? AND created_at >= ?", senderID, typ, since).
		Count(&count).Error
	return count, err
}

// LastSentAt returns the creation time of the sender's most recent
// notification of a type, or nil when none exists.
func (r *PendingNotificationRepository) LastSentAt(senderID uint, typ models.NotificationType) (*time.Time, error) {
	var row models.PendingNotification
	err := r.db.Where("sender_id = ? AND type = ?", senderID, typ).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.CreatedAt, nil
}

// CleanupOld removes sent notifications older than the given duration.
func (r *PendingNotificationRepository) CleanupOld(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return r.db.Where("is_sent = true AND created_at < ?", cutoff).
		Delete(&models.PendingNotification{}).Error
}
