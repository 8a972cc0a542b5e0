package push

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
)

type MockSubscriptionRepository struct {
	mu   sync.Mutex
	subs map[string]models.PushSubscription
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{subs: make(map[string]models.PushSubscription)}
}

func subKey(userID uint, endpoint string) string {
	return fmt.Sprintf("%d|%s", userID, endpoint)
}

func (m *MockSubscriptionRepository) Upsert(userID uint, endpoint, p256dh, auth string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[subKey(userID, endpoint)] = models.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}
	return nil
}

func (m *MockSubscriptionRepository) Remove(userID uint, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, subKey(userID, endpoint))
	return nil
}

func (m *MockSubscriptionRepository) ListActive(userID uint) ([]models.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PushSubscription
	for _, sub := range m.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepository) LatestEndpoint(userID uint) (string, error) {
	subs, _ := m.ListActive(userID)
	if len(subs) == 0 {
		return "", nil
	}
	return subs[len(subs)-1].Endpoint, nil
}

func (m *MockSubscriptionRepository) CountForUser(userID uint) (int64, error) {
	subs, _ := m.ListActive(userID)
	return int64(len(subs)), nil
}

// MockSender fails specific endpoints, permanently or transiently.
type MockSender struct {
	mu        sync.Mutex
	gone      map[string]bool
	transient map[string]bool
	sent      []string
}

func NewMockSender() *MockSender {
	return &MockSender{
		gone:      make(map[string]bool),
		transient: make(map[string]bool),
	}
}

func (s *MockSender) Send(ctx context.Context, sub models.PushSubscription, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sub.Endpoint)
	if s.gone[sub.Endpoint] {
		return fmt.Errorf("endpoint %s: %w", sub.Endpoint, ErrEndpointGone)
	}
	if s.transient[sub.Endpoint] {
		return errors.New("push transport rejected with status 500")
	}
	return nil
}

type recordedAttempt struct {
	NotificationID string
	Endpoint       string
	Status         models.DeliveryStatus
}

type MockRecorder struct {
	mu       sync.Mutex
	attempts []recordedAttempt
}

func (r *MockRecorder) Record(notificationID string, typ models.NotificationType, endpoint string, status models.DeliveryStatus, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, recordedAttempt{
		NotificationID: notificationID,
		Endpoint:       endpoint,
		Status:         status,
	})
}

func TestDispatchPrunesPermanentFailures(t *testing.T) {
	subs := NewMockSubscriptionRepository()
	subs.Upsert(1, "https://push/phone", "p", "a")
	subs.Upsert(1, "https://push/laptop", "p", "a")
	subs.Upsert(1, "https://push/old-tablet", "p", "a")

	sender := NewMockSender()
	sender.gone["https://push/old-tablet"] = true
	recorder := &MockRecorder{}
	dispatcher := NewDispatcher(subs, sender, recorder)

	result, err := dispatcher.Dispatch("n1", models.NotifNewMessage, 1, Payload{Title: "oi"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if result.Attempted != 3 || result.Delivered != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want {3 2 1}", result)
	}

	remaining, _ := subs.CountForUser(1)
	if remaining != 2 {
		t.Errorf("remaining subscriptions = %d, want 2 (dead endpoint pruned)", remaining)
	}
	if _, ok := subs.subs[subKey(1, "https://push/old-tablet")]; ok {
		t.Error("the gone endpoint should have been removed")
	}

	if got := len(recorder.attempts); got != 3 {
		t.Errorf("recorded attempts = %d, want one per endpoint", got)
	}
}

func TestDispatchLeavesTransientFailuresInPlace(t *testing.T) {
	subs := NewMockSubscriptionRepository()
	subs.Upsert(1, "https://push/phone", "p", "a")
	subs.Upsert(1, "https://push/flaky", "p", "a")

	sender := NewMockSender()
	sender.transient["https://push/flaky"] = true
	dispatcher := NewDispatcher(subs, sender, &MockRecorder{})

	result, err := dispatcher.Dispatch("n2", models.NotifNewMessage, 1, Payload{Title: "oi"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if result.Delivered != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want one delivered and one failed", result)
	}
	remaining, _ := subs.CountForUser(1)
	if remaining != 2 {
		t.Errorf("remaining subscriptions = %d, want 2 (transient failures stay)", remaining)
	}
}

func TestDispatchWithZeroSubscriptionsIsNotAnError(t *testing.T) {
	dispatcher := NewDispatcher(NewMockSubscriptionRepository(), NewMockSender(), &MockRecorder{})

	result, err := dispatcher.Dispatch("n3", models.NotifNewMessage, 42, Payload{Title: "oi"})
	if err != nil {
		t.Fatalf("Dispatch with no devices: %v", err)
	}
	if result.Attempted != 0 || result.Delivered != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want all zeros", result)
	}
}

func TestDispatchRecordsOutcomePerAttempt(t *testing.T) {
	subs := NewMockSubscriptionRepository()
	subs.Upsert(1, "https://push/phone", "p", "a")
	subs.Upsert(1, "https://push/gone", "p", "a")

	sender := NewMockSender()
	sender.gone["https://push/gone"] = true
	recorder := &MockRecorder{}
	dispatcher := NewDispatcher(subs, sender, recorder)

	if _, err := dispatcher.Dispatch("n4", models.NotifPing, 1, Payload{Title: "oi"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	var delivered, failed int
	for _, a := range recorder.attempts {
		if a.NotificationID != "n4" {
			t.Errorf("attempt notification id = %q, want n4", a.NotificationID)
		}
		switch a.Status {
		case models.DeliveryDelivered:
			delivered++
		case models.DeliveryFailed:
			failed++
		}
	}
	if delivered != 1 || failed != 1 {
		t.Errorf("recorded delivered=%d failed=%d, want 1 and 1", delivered, failed)
	}
}
