package syncclient

import "time"

// ReadState is the viewer's read position in one discussion. A nil
// *ReadState means the viewer never opened the discussion.
type ReadState struct {
	DiscussionID      uint      `json:"discussion_id"`
	LastReadMessageID *uint     `json:"last_read_message_id"`
	LastReadAt        time.Time `json:"last_read_at"`
}

// CountUnread computes how many partner messages the viewer has not
// seen. Without a read state every partner message counts; the viewer's
// own messages never do.
func CountUnread(messages []Message, viewerID uint, state *ReadState) int {
	count := 0
	for _, m := range messages {
		if m.SenderID == viewerID {
			continue
		}
		if state == nil || m.CreatedAt.After(state.LastReadAt) {
			count++
		}
	}
	return count
}
