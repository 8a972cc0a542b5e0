package syncclient

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is one change received from a sync feed. Exactly one of the
// payload fields is set, matching Type.
type Event struct {
	Type       string
	Discussion *Discussion
	Message    *Message
	Reaction   *Reaction
	// ID identifies the target of delete events.
	ID uint
}

// Feed delivers ordered events. Subscribe returns an unsubscribe
// function; callers must invoke it when the consuming scope goes away or
// the handler leaks across navigations. Handlers run synchronously in
// arrival order.
type Feed interface {
	Subscribe(handler func(Event)) (unsubscribe func())
}

// Discussion is the client-side projection of one discussion row.
type Discussion struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	CreatedBy      uint      `json:"created_by"`
	Status         string    `json:"status"`
	LastActivityAt time.Time `json:"last_activity_at"`
	UnreadCount    int       `json:"unread_count"`
}

// Message is the client-side projection of one message row.
type Message struct {
	ID           uint       `json:"id"`
	DiscussionID uint       `json:"discussion_id"`
	SenderID     uint       `json:"sender_id"`
	Content      string     `json:"content"`
	ParentID     *uint      `json:"parent_id"`
	IsPinned     bool       `json:"is_pinned"`
	Reactions    []Reaction `json:"reactions"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Reaction mirrors one emoji reaction.
type Reaction struct {
	MessageID uint   `json:"message_id"`
	UserID    uint   `json:"user_id"`
	Emoji     string `json:"emoji"`
}

// wireEnvelope matches the realtime hub's event framing.
type wireEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ParseEvent decodes one frame from the websocket transport into an
// Event. Unknown event types return an error; callers skip them.
func ParseEvent(frame []byte) (Event, error) {
	var env wireEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Event{}, err
	}

	event := Event{Type: env.Type}
	switch env.Type {
	case "discussion_created", "discussion_updated":
		var d Discussion
		if err := json.Unmarshal(env.Payload, &d); err != nil {
			return Event{}, err
		}
		event.Discussion = &d
		event.ID = d.ID
	case "message_created", "message_updated":
		var m Message
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return Event{}, err
		}
		event.Message = &m
		event.ID = m.ID
	case "reaction_added", "reaction_removed":
		var r Reaction
		if err := json.Unmarshal(env.Payload, &r); err != nil {
			return Event{}, err
		}
		event.Reaction = &r
		event.ID = r.MessageID
	case "discussion_deleted", "message_deleted":
		var ref struct {
			ID uint `json:"id"`
		}
		if err := json.Unmarshal(env.Payload, &ref); err != nil {
			return Event{}, err
		}
		event.ID = ref.ID
	default:
		return Event{}, fmt.Errorf("unknown sync event type: %s", env.Type)
	}
	return event, nil
}
