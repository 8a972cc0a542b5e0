package realtime

// MessagePing is a keepalive ping from client
type MessagePing struct {
}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	// Respond with pong
	return ctx.Hub.SendToUser(ctx.UserID, map[string]string{
		"type": "pong",
	})
}

// MessagePong is a pong response (in case client wants to track latency)
type MessagePong struct {
}

func (msg *MessagePong) GetType() string {
	return "pong"
}

func (msg *MessagePong) Process(ctx *MessageContext) error {
	return nil
}

// MessageTyping relays a typing indicator to the partner. Ephemeral:
// never persisted, never queued.
type MessageTyping struct {
	DiscussionID uint `json:"discussion_id"`
	IsTyping     bool `json:"is_typing"`
}

func (msg *MessageTyping) GetType() string {
	return "typing"
}

func (msg *MessageTyping) Process(ctx *MessageContext) error {
	ctx.Hub.PublishEvent(NewEvent("typing", map[string]interface{}{
		"discussion_id": msg.DiscussionID,
		"user_id":       ctx.UserID,
		"is_typing":     msg.IsTyping,
	}), ctx.UserID)
	return nil
}

// MessageRead marks a discussion read up to now for the sender.
type MessageRead struct {
	DiscussionID      uint  `json:"discussion_id"`
	LastReadMessageID *uint `json:"last_read_message_id"`
}

func (msg *MessageRead) GetType() string {
	return "read"
}

func (msg *MessageRead) Process(ctx *MessageContext) error {
	if msg.DiscussionID == 0 {
		return ctx.Hub.SendError(ctx.UserID, "missing_discussion", "discussion_id is required", "")
	}
	if err := ctx.DiscussionService.MarkRead(msg.DiscussionID, ctx.UserID, msg.LastReadMessageID); err != nil {
		return err
	}
	return ctx.Hub.SendToUser(ctx.UserID, map[string]interface{}{
		"type":          "read_ack",
		"discussion_id": msg.DiscussionID,
	})
}
