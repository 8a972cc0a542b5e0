package syncclient

import "sync"

// MessageList is the client-side message store for one open discussion,
// kept in insertion order. The pinned view is a filter over the same
// slice, so it can never drift from the source list.
type MessageList struct {
	mu           sync.RWMutex
	discussionID uint
	items        []*Message
	byID         map[uint]*Message
}

func NewMessageList(discussionID uint) *MessageList {
	return &MessageList{
		discussionID: discussionID,
		byID:         make(map[uint]*Message),
	}
}

// Load replaces local state with a full snapshot (oldest first).
func (l *MessageList) Load(messages []Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make([]*Message, 0, len(messages))
	l.byID = make(map[uint]*Message, len(messages))
	for i := range messages {
		m := messages[i]
		if m.DiscussionID != l.discussionID {
			continue
		}
		l.items = append(l.items, &m)
		l.byID[m.ID] = &m
	}
}

// Apply routes one message-feed event into the list. Events for other
// discussions are ignored; updates for ids never seen are dropped rather
// than erroring; a full reload reconciles if it matters.
func (l *MessageList) Apply(event Event) {
	switch event.Type {
	case "message_created":
		if event.Message != nil {
			l.insert(*event.Message)
		}
	case "message_updated":
		if event.Message != nil {
			l.update(*event.Message)
		}
	case "message_deleted":
		l.remove(event.ID)
	case "reaction_added":
		if event.Reaction != nil {
			l.addReaction(*event.Reaction)
		}
	case "reaction_removed":
		if event.Reaction != nil {
			l.removeReaction(*event.Reaction)
		}
	}
}

func (l *MessageList) insert(m Message) {
	if m.DiscussionID != l.discussionID {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[m.ID]; exists {
		return
	}
	item := m
	l.items = append(l.items, &item)
	l.byID[m.ID] = &item
}

func (l *MessageList) update(m Message) {
	if m.DiscussionID != l.discussionID {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.byID[m.ID]
	if !ok {
		return
	}
	existing.Content = m.Content
	existing.IsPinned = m.IsPinned
	existing.ParentID = m.ParentID
	if m.Reactions != nil {
		existing.Reactions = m.Reactions
	}
}

func (l *MessageList) remove(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byID[id]; !ok {
		return
	}
	delete(l.byID, id)
	for i, m := range l.items {
		if m.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
}

func (l *MessageList) addReaction(r Reaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.byID[r.MessageID]
	if !ok {
		return
	}
	for _, existing := range m.Reactions {
		if existing.UserID == r.UserID && existing.Emoji == r.Emoji {
			return
		}
	}
	m.Reactions = append(m.Reactions, r)
}

func (l *MessageList) removeReaction(r Reaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.byID[r.MessageID]
	if !ok {
		return
	}
	for i, existing := range m.Reactions {
		if existing.UserID == r.UserID && existing.Emoji == r.Emoji {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			return
		}
	}
}

// Snapshot returns all messages in insertion order.
func (l *MessageList) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.items))
	for i, m := range l.items {
		out[i] = *m
	}
	return out
}

// Pinned filters the source list; it is a view, not a second store.
func (l *MessageList) Pinned() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Message
	for _, m := range l.items {
		if m.IsPinned {
			out = append(out, *m)
		}
	}
	return out
}

// Len reports how many messages are loaded.
func (l *MessageList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
