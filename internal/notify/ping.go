package notify

import (
	"log"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/push"
	"github.com/amoralabs/amora-backend/internal/repository"
)

// PingService sends the manual "thinking of you" ping. Every send is
// logged as a frozen notification row; the limiter reads that same log,
// so quota and cooldown survive restarts and follow the sender across
// devices.
type PingService struct {
	pending    repository.PendingNotificationRepositoryInterface
	limiter    *PingLimiter
	dispatcher PushDispatcher
}

func NewPingService(pending repository.PendingNotificationRepositoryInterface, limiter *PingLimiter, dispatcher PushDispatcher) *PingService {
	return &PingService{
		pending:    pending,
		limiter:    limiter,
		dispatcher: dispatcher,
	}
}

// Send checks both rate constraints, logs the ping, and dispatches it to
// the partner. The message escalates with the sender's send count today:
// the Nth ping picks the Nth pool entry, capped at the last.
func (s *PingService) Send(senderID, recipientID uint, senderName string) (PingStatus, error) {
	status, err := s.limiter.Status(senderID)
	if err != nil {
		return PingStatus{}, err
	}
	if err := status.Deny(); err != nil {
		return status, err
	}

	row, err := s.pending.CreateSent(repository.GroupOrCreateInput{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotifPing,
	})
	if err != nil {
		return status, err
	}

	t := RenderPing(status.SentToday, TemplateVars{Sender: senderName})
	payload := push.Payload{
		Title: t.Title,
		Body:  t.Body,
		Icon:  "/icons/icon-192.png",
		// One shared tag: repeated pings replace each other on the
		// device instead of stacking.
		Tag:  "ping",
		Data: push.DataURL{URL: "/"},
	}

	go func() {
		if _, err := s.dispatcher.Dispatch(row.PushID, models.NotifPing, recipientID, payload); err != nil {
			log.Printf("Ping dispatch for notification %s failed: %v", row.PushID, err)
		}
	}()

	status.SentToday++
	status.RemainingToday--
	if status.RemainingToday < 0 {
		status.RemainingToday = 0
	}
	status.Cooldown = PingCooldown
	status.Allowed = false
	return status, nil
}

// Status exposes the limiter's view for the ping UI.
func (s *PingService) Status(userID uint) (PingStatus, error) {
	return s.limiter.Status(userID)
}
