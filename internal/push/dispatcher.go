package push

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/repository"
)

// AttemptRecorder receives the outcome of every dispatch attempt.
type AttemptRecorder interface {
	Record(notificationID string, typ models.NotificationType, endpoint string, status models.DeliveryStatus, at time.Time)
}

// Result summarizes one fan-out.
type Result struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Dispatcher fans a payload out to every device a recipient has
// registered. Endpoints are independent: one slow or dead device never
// blocks or fails the others.
type Dispatcher struct {
	subs     repository.PushSubscriptionRepositoryInterface
	sender   Sender
	recorder AttemptRecorder

	maxConcurrent int
	timeout       time.Duration
}

func NewDispatcher(subs repository.PushSubscriptionRepositoryInterface, sender Sender, recorder AttemptRecorder) *Dispatcher {
	return &Dispatcher{
		subs:          subs,
		sender:        sender,
		recorder:      recorder,
		maxConcurrent: 4,
		timeout:       10 * time.Second,
	}
}

// Dispatch sends the payload to all of the recipient's endpoints with a
// bounded worker pool. Zero endpoints is a successful no-op, not an
// error: the user simply has no push-capable device. Permanently dead
// endpoints are pruned from the registry; transient failures are left for
// the next natural send. No retry queue exists; delivery is best-effort.
func (d *Dispatcher) Dispatch(notificationID string, typ models.NotificationType, recipientID uint, payload Payload) (Result, error) {
	subs, err := d.subs.ListActive(recipientID)
	if err != nil {
		return Result{}, err
	}
	if len(subs) == 0 {
		return Result{}, nil
	}

	body, err := payload.Marshal()
	if err != nil {
		return Result{}, err
	}

	var (
		mu     sync.Mutex
		result = Result{Attempted: len(subs)}
		sem    = make(chan struct{}, d.maxConcurrent)
		wg     sync.WaitGroup
	)

	for _, sub := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(sub models.PushSubscription) {
			defer wg.Done()
			defer func() { <-sem }()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			sendErr := d.sender.Send(ctx, sub, body)
			now := time.Now()

			if sendErr == nil {
				d.recorder.Record(notificationID, typ, sub.Endpoint, models.DeliveryDelivered, now)
				mu.Lock()
				result.Delivered++
				mu.Unlock()
				return
			}

			d.recorder.Record(notificationID, typ, sub.Endpoint, models.DeliveryFailed, now)
			mu.Lock()
			result.Failed++
			mu.Unlock()

			if errors.Is(sendErr, ErrEndpointGone) {
				if err := d.subs.Remove(sub.UserID, sub.Endpoint); err != nil {
					log.Printf("Failed to prune dead endpoint for user %d: %v", sub.UserID, err)
				} else {
					log.Printf("Pruned dead push endpoint for user %d", sub.UserID)
				}
				return
			}
			log.Printf("Push to user %d failed (transient): %v", sub.UserID, sendErr)
		}(sub)
	}

	wg.Wait()
	return result, nil
}
