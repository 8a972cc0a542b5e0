package notify

import (
	"fmt"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/repository"
	"gorm.io/gorm"
)

// MockPendingNotificationRepository is an in-memory stand-in for the
// aggregation store. It mirrors the partial-unique-index semantics: at
// most one unsent row per (discussion, recipient).
type MockPendingNotificationRepository struct {
	rows   map[uint]*models.PendingNotification
	nextID uint
	now    func() time.Time
}

func NewMockPendingNotificationRepository() *MockPendingNotificationRepository {
	return &MockPendingNotificationRepository{
		rows:   make(map[uint]*models.PendingNotification),
		nextID: 1,
		now:    time.Now,
	}
}

func (m *MockPendingNotificationRepository) insert(row *models.PendingNotification) *models.PendingNotification {
	row.ID = m.nextID
	m.nextID++
	if row.PushID == "" {
		row.PushID = fmt.Sprintf("push-%d", row.ID)
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = m.now()
	}
	row.UpdatedAt = row.CreatedAt
	m.rows[row.ID] = row
	return row
}

func (m *MockPendingNotificationRepository) unsentFor(discussionID, recipientID uint) *models.PendingNotification {
	for _, row := range m.rows {
		if row.DiscussionID == discussionID && row.RecipientID == recipientID && !row.IsSent {
			return row
		}
	}
	return nil
}

func (m *MockPendingNotificationRepository) GroupOrCreate(in repository.GroupOrCreateInput, window time.Duration) (*models.PendingNotification, bool, error) {
	now := m.now()

	existing := m.unsentFor(in.DiscussionID, in.RecipientID)
	if existing != nil {
		age := now.Sub(existing.CreatedAt)
		groupable := existing.Type == models.NotifNewMessage || existing.Type == models.NotifMultipleMessages
		if in.Type == models.NotifNewMessage && groupable && age < window {
			existing.MessageCount++
			existing.LastMessageContent = in.Content
			existing.Type = models.NotifMultipleMessages
			existing.UpdatedAt = now
			return existing, true, nil
		}
		// Aged out or not groupable: retire so a fresh row can exist.
		existing.IsSent = true
	}

	row := m.insert(&models.PendingNotification{
		DiscussionID:       in.DiscussionID,
		RecipientID:        in.RecipientID,
		SenderID:           in.SenderID,
		Type:               in.Type,
		MessageCount:       1,
		LastMessageContent: in.Content,
		ThreadContext:      in.ThreadContext,
	})
	return row, false, nil
}

func (m *MockPendingNotificationRepository) CreateSent(in repository.GroupOrCreateInput) (*models.PendingNotification, error) {
	row := m.insert(&models.PendingNotification{
		DiscussionID:       in.DiscussionID,
		RecipientID:        in.RecipientID,
		SenderID:           in.SenderID,
		Type:               in.Type,
		MessageCount:       1,
		LastMessageContent: in.Content,
		ThreadContext:      in.ThreadContext,
		IsSent:             true,
	})
	return row, nil
}

func (m *MockPendingNotificationRepository) MarkSent(id uint) error {
	if row, ok := m.rows[id]; ok {
		row.IsSent = true
	}
	return nil
}

func (m *MockPendingNotificationRepository) FindUnsent(discussionID, recipientID uint) (*models.PendingNotification, error) {
	if row := m.unsentFor(discussionID, recipientID); row != nil {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPendingNotificationRepository) CountSentSince(senderID uint, typ models.NotificationType, since time.Time) (int64, error) {
	var count int64
	for _, row := range m.rows {
		if row.SenderID == senderID && row.Type == typ && !row.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockPendingNotificationRepository) LastSentAt(senderID uint, typ models.NotificationType) (*time.Time, error) {
	var last *time.Time
	for _, row := range m.rows {
		if row.SenderID == senderID && row.Type == typ {
			if last == nil || row.CreatedAt.After(*last) {
				t := row.CreatedAt
				last = &t
			}
		}
	}
	return last, nil
}

func (m *MockPendingNotificationRepository) CleanupOld(olderThan time.Duration) error {
	cutoff := m.now().Add(-olderThan)
	for id, row := range m.rows {
		if row.IsSent && row.CreatedAt.Before(cutoff) {
			delete(m.rows, id)
		}
	}
	return nil
}

// countRows tallies rows matching a predicate.
func (m *MockPendingNotificationRepository) countRows(match func(*models.PendingNotification) bool) int {
	count := 0
	for _, row := range m.rows {
		if match(row) {
			count++
		}
	}
	return count
}

// addPing backdates a logged ping for limiter tests.
func (m *MockPendingNotificationRepository) addPing(senderID uint, at time.Time) {
	m.insert(&models.PendingNotification{
		RecipientID:  senderID + 1000,
		SenderID:     senderID,
		Type:         models.NotifPing,
		MessageCount: 1,
		IsSent:       true,
		CreatedAt:    at,
	})
}
