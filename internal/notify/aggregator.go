package notify

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/push"
	"github.com/amoralabs/amora-backend/internal/repository"
)

// GroupingWindow is how long an unsent notification keeps absorbing
// follow-up messages for the same discussion and recipient.
const GroupingWindow = 2 * time.Minute

// PushDispatcher fans one rendered payload out to a recipient's devices.
type PushDispatcher interface {
	Dispatch(notificationID string, typ models.NotificationType, recipientID uint, payload push.Payload) (push.Result, error)
}

// EventMetadata carries the display values an activity event knows about.
type EventMetadata struct {
	Title   string `json:"title"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Emoji   string `json:"emoji"`
	Status  string `json:"status"`
	Context string `json:"context"`
}

// EventResult reports what the aggregator did with an event.
type EventResult struct {
	Sent    bool `json:"sent"`
	Grouped bool `json:"grouped"`
	Count   int  `json:"count,omitempty"`
}

// Aggregator turns content activity into notifications, merging bursts of
// messages into one instead of pushing per keystroke.
type Aggregator struct {
	pending    repository.PendingNotificationRepositoryInterface
	dispatcher PushDispatcher
	window     time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAggregator builds an aggregator. rng drives template selection; pass
// a seeded source in tests to pin the variant.
func NewAggregator(pending repository.PendingNotificationRepositoryInterface, dispatcher PushDispatcher, rng *rand.Rand) *Aggregator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Aggregator{
		pending:    pending,
		dispatcher: dispatcher,
		window:     GroupingWindow,
		rng:        rng,
	}
}

// HandleEvent decides whether the event merges into a pending
// notification or starts a new one, then dispatches asynchronously.
// The returned result reflects the durable aggregation write only;
// dispatch failures are logged, never surfaced to the caller.
func (a *Aggregator) HandleEvent(discussionID, recipientID, senderID uint, typ models.NotificationType, meta EventMetadata) (EventResult, error) {
	if recipientID == senderID {
		// Nobody wants a push about their own activity.
		return EventResult{Sent: false}, nil
	}

	row, grouped, err := a.pending.GroupOrCreate(repository.GroupOrCreateInput{
		DiscussionID:  discussionID,
		RecipientID:   recipientID,
		SenderID:      senderID,
		Type:          typ,
		Content:       meta.Content,
		ThreadContext: meta.Context,
	}, a.window)
	if err != nil {
		return EventResult{}, err
	}

	payload := a.render(row, meta)
	go func() {
		if _, err := a.dispatcher.Dispatch(row.PushID, row.Type, row.RecipientID, payload); err != nil {
			log.Printf("Push dispatch for notification %s failed: %v", row.PushID, err)
		}
	}()

	if grouped {
		return EventResult{Sent: true, Grouped: true, Count: row.MessageCount}, nil
	}
	return EventResult{Sent: true, Count: row.MessageCount}, nil
}

func (a *Aggregator) render(row *models.PendingNotification, meta EventMetadata) push.Payload {
	vars := TemplateVars{
		Title:   meta.Title,
		Sender:  meta.Sender,
		Count:   row.MessageCount,
		Emoji:   meta.Emoji,
		Status:  meta.Status,
		Context: meta.Context,
	}

	a.mu.Lock()
	t := Render(row.Type, vars, a.rng)
	a.mu.Unlock()

	return push.Payload{
		Title: t.Title,
		Body:  t.Body,
		Icon:  "/icons/icon-192.png",
		// Same tag per discussion and recipient: the device replaces the
		// previous notification instead of stacking a pile.
		Tag:  fmt.Sprintf("discussion-%d", row.DiscussionID),
		Data: push.DataURL{URL: fmt.Sprintf("/discussions/%d", row.DiscussionID)},
	}
}
