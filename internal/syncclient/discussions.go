package syncclient

import (
	"sort"
	"sync"
	"time"
)

// DiscussionList is the client-side discussion index, ordered by
// last_activity_at descending. Its activity and unread bumps come from
// the discussion feed (or its own OnNewMessage hook), never derived from
// the message list: the two feeds have no cross-ordering guarantee.
type DiscussionList struct {
	mu       sync.RWMutex
	viewerID uint
	items    []*Discussion
	byID     map[uint]*Discussion
}

func NewDiscussionList(viewerID uint) *DiscussionList {
	return &DiscussionList{
		viewerID: viewerID,
		byID:     make(map[uint]*Discussion),
	}
}

// Load replaces local state with a full snapshot from the source of
// truth. This is the reconciliation path of last resort after missed or
// dropped events.
func (l *DiscussionList) Load(discussions []Discussion) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make([]*Discussion, 0, len(discussions))
	l.byID = make(map[uint]*Discussion, len(discussions))
	for i := range discussions {
		d := discussions[i]
		l.items = append(l.items, &d)
		l.byID[d.ID] = &d
	}
	l.resortLocked()
}

// Apply routes one discussion-feed event into the list.
func (l *DiscussionList) Apply(event Event) {
	switch event.Type {
	case "discussion_created":
		if event.Discussion != nil {
			l.upsert(*event.Discussion, true)
		}
	case "discussion_updated":
		if event.Discussion != nil {
			l.upsert(*event.Discussion, false)
		}
	case "discussion_deleted":
		l.remove(event.ID)
	}
}

func (l *DiscussionList) upsert(d Discussion, isNew bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.byID[d.ID]
	if !ok {
		if !isNew {
			// Update for a discussion we never loaded: drop it. A full
			// reload picks it up if it matters.
			return
		}
		item := d
		l.items = append([]*Discussion{&item}, l.items...)
		l.byID[d.ID] = &item
		l.resortLocked()
		return
	}

	// Merge fields in place; zero UnreadCount from the server never
	// clobbers a locally bumped counter on plain updates.
	existing.Title = d.Title
	existing.Status = d.Status
	existing.CreatedBy = d.CreatedBy
	if d.LastActivityAt.After(existing.LastActivityAt) {
		existing.LastActivityAt = d.LastActivityAt
	}
	if d.UnreadCount > 0 {
		existing.UnreadCount = d.UnreadCount
	}
	l.resortLocked()
}

func (l *DiscussionList) remove(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byID[id]; !ok {
		return
	}
	delete(l.byID, id)
	for i, d := range l.items {
		if d.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
}

// OnNewMessage bumps activity and unread for a message authored by
// someone other than the viewer. Messages from the viewer only move the
// discussion up the list.
func (l *DiscussionList) OnNewMessage(discussionID, senderID uint, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, ok := l.byID[discussionID]
	if !ok {
		return
	}
	if at.After(d.LastActivityAt) {
		d.LastActivityAt = at
	}
	if senderID != l.viewerID {
		d.UnreadCount++
	}
	l.resortLocked()
}

// MarkRead optimistically zeroes the unread counter before the server
// confirms.
func (l *DiscussionList) MarkRead(discussionID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d, ok := l.byID[discussionID]; ok {
		d.UnreadCount = 0
	}
}

// Get returns a copy of one discussion.
func (l *DiscussionList) Get(id uint) (Discussion, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	d, ok := l.byID[id]
	if !ok {
		return Discussion{}, false
	}
	return *d, true
}

// Snapshot returns the ordered list as values.
func (l *DiscussionList) Snapshot() []Discussion {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Discussion, len(l.items))
	for i, d := range l.items {
		out[i] = *d
	}
	return out
}

// TotalUnread sums unread counters across discussions (badge count).
func (l *DiscussionList) TotalUnread() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, d := range l.items {
		total += d.UnreadCount
	}
	return total
}

func (l *DiscussionList) resortLocked() {
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].LastActivityAt.After(l.items[j].LastActivityAt)
	})
}
