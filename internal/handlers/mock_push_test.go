package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/repository"
	"gorm.io/gorm"
)

// MockSubscriptionRepository is a canned subscription registry for
// handler tests.
type MockSubscriptionRepository struct {
	subs    []models.PushSubscription
	removed []string
}

func (m *MockSubscriptionRepository) Upsert(userID uint, endpoint, p256dh, auth string) error {
	for i, sub := range m.subs {
		if sub.UserID == userID && sub.Endpoint == endpoint {
			m.subs[i].P256dh = p256dh
			m.subs[i].Auth = auth
			return nil
		}
	}
	m.subs = append(m.subs, models.PushSubscription{UserID: userID, Endpoint: endpoint, P256dh: p256dh, Auth: auth})
	return nil
}

func (m *MockSubscriptionRepository) Remove(userID uint, endpoint string) error {
	m.removed = append(m.removed, endpoint)
	kept := m.subs[:0]
	for _, sub := range m.subs {
		if sub.UserID != userID || sub.Endpoint != endpoint {
			kept = append(kept, sub)
		}
	}
	m.subs = kept
	return nil
}

func (m *MockSubscriptionRepository) ListActive(userID uint) ([]models.PushSubscription, error) {
	var out []models.PushSubscription
	for _, sub := range m.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepository) LatestEndpoint(userID uint) (string, error) {
	endpoint := ""
	for _, sub := range m.subs {
		if sub.UserID == userID {
			endpoint = sub.Endpoint
		}
	}
	return endpoint, nil
}

func (m *MockSubscriptionRepository) CountForUser(userID uint) (int64, error) {
	var count int64
	for _, sub := range m.subs {
		if sub.UserID == userID {
			count++
		}
	}
	return count, nil
}

// MockPendingRepository hands out frozen rows; handler tests never
// exercise the grouping path.
type MockPendingRepository struct {
	created []repository.GroupOrCreateInput
}

func (m *MockPendingRepository) GroupOrCreate(in repository.GroupOrCreateInput, window time.Duration) (*models.PendingNotification, bool, error) {
	row, err := m.CreateSent(in)
	return row, false, err
}

func (m *MockPendingRepository) CreateSent(in repository.GroupOrCreateInput) (*models.PendingNotification, error) {
	m.created = append(m.created, in)
	return &models.PendingNotification{
		PushID:       "push-test",
		RecipientID:  in.RecipientID,
		SenderID:     in.SenderID,
		Type:         in.Type,
		MessageCount: 1,
		IsSent:       true,
	}, nil
}

func (m *MockPendingRepository) MarkSent(id uint) error { return nil }

func (m *MockPendingRepository) FindUnsent(discussionID, recipientID uint) (*models.PendingNotification, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPendingRepository) CountSentSince(senderID uint, typ models.NotificationType, since time.Time) (int64, error) {
	return 0, nil
}

func (m *MockPendingRepository) LastSentAt(senderID uint, typ models.NotificationType) (*time.Time, error) {
	return nil, nil
}

func (m *MockPendingRepository) CleanupOld(olderThan time.Duration) error { return nil }

// MockWebPushSender captures the payload bodies handed to the transport.
type MockWebPushSender struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (m *MockWebPushSender) Send(ctx context.Context, sub models.PushSubscription, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]byte, len(body))
	copy(copied, body)
	m.bodies = append(m.bodies, copied)
	return nil
}

func (m *MockWebPushSender) sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bodies
}

// MockDeliveryRepository backs a real analytics.Recorder in handler
// tests. Dispatch records attempts from worker goroutines, so Create
// must be safe for concurrent use.
type MockDeliveryRepository struct {
	mu      sync.Mutex
	records []models.DeliveryRecord
}

func (m *MockDeliveryRepository) Create(record *models.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *record)
	return nil
}

func (m *MockDeliveryRepository) SetClicked(notificationID string, at time.Time) (int64, error) {
	return 0, nil
}

func (m *MockDeliveryRepository) CountByStatus(since time.Time) (repository.StatusCounts, error) {
	return repository.StatusCounts{}, nil
}

func (m *MockDeliveryRepository) CountByType(since time.Time) ([]repository.TypeBreakdownRow, error) {
	return nil, nil
}

func (m *MockDeliveryRepository) CleanupOld(olderThan time.Duration) error { return nil }
