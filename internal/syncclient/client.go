package syncclient

import "sync"

// Client wires a Feed into the local stores. One Client per signed-in
// session; Close detaches every subscription deterministically so a
// replaced session cannot keep mutating stale state.
type Client struct {
	mu          sync.Mutex
	viewerID    uint
	discussions *DiscussionList
	messages    map[uint]*MessageList
	unsubs      []func()
	closed      bool
}

func NewClient(viewerID uint) *Client {
	return &Client{
		viewerID:    viewerID,
		discussions: NewDiscussionList(viewerID),
		messages:    make(map[uint]*MessageList),
	}
}

// Attach subscribes the client to a feed. Multiple feeds may be
// attached; each is released on Close.
func (c *Client) Attach(feed Feed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	unsub := feed.Subscribe(c.handle)
	c.unsubs = append(c.unsubs, unsub)
}

func (c *Client) handle(event Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	lists := make([]*MessageList, 0, len(c.messages))
	for _, l := range c.messages {
		lists = append(lists, l)
	}
	c.mu.Unlock()

	c.discussions.Apply(event)
	if event.Type == "message_created" && event.Message != nil {
		m := event.Message
		c.discussions.OnNewMessage(m.DiscussionID, m.SenderID, m.CreatedAt)
	}
	for _, l := range lists {
		l.Apply(event)
	}
}

// Discussions exposes the discussion store.
func (c *Client) Discussions() *DiscussionList {
	return c.discussions
}

// OpenDiscussion returns the message store for one discussion, creating
// it on first use. The store receives feed events until Close.
func (c *Client) OpenDiscussion(discussionID uint) *MessageList {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.messages[discussionID]; ok {
		return l
	}
	l := NewMessageList(discussionID)
	c.messages[discussionID] = l
	return l
}

// CloseDiscussion drops the message store so events for it stop being
// applied. Reopening loads a fresh snapshot.
func (c *Client) CloseDiscussion(discussionID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.messages, discussionID)
}

// Close unsubscribes from every attached feed. Safe to call twice.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}
