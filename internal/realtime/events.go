package realtime

import "encoding/json"

// Sync event types pushed to connected clients. Each belongs to one of
// three feeds; ordering is guaranteed within a feed only. The discussion
// feed carries its own activity/unread bumps so clients never have to
// derive them from the message feed.
const (
	EventDiscussionCreated = "discussion_created"
	EventDiscussionUpdated = "discussion_updated"
	EventDiscussionDeleted = "discussion_deleted"

	EventMessageCreated = "message_created"
	EventMessageUpdated = "message_updated"
	EventMessageDeleted = "message_deleted"

	EventReactionAdded   = "reaction_added"
	EventReactionRemoved = "reaction_removed"
)

// Event is the wire envelope for one sync change.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent wraps a payload struct in the envelope. Marshal errors are
// impossible for the payload types used here, so they panic loudly.
func NewEvent(eventType string, payload interface{}) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic("realtime: unmarshalable event payload: " + err.Error())
	}
	return Event{Type: eventType, Payload: raw}
}
