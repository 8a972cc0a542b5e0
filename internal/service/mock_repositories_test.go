package service

import (
	"sort"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/repository"
	"gorm.io/gorm"
)

// MockMessageRepository is an in-memory MessageRepository for testing.
type MockMessageRepository struct {
	messages  map[uint]*models.Message
	reactions map[uint][]models.Reaction
	nextID    uint
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages:  make(map[uint]*models.Message),
		reactions: make(map[uint][]models.Reaction),
		nextID:    1,
	}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *msg
	copied.Reactions = m.reactions[id]
	return &copied, nil
}

func (m *MockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			return msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) FindByDiscussion(discussionID uint, cursor uint, limit int) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.messages {
		if msg.DiscussionID != discussionID {
			continue
		}
		if cursor > 0 && msg.ID >= cursor {
			continue
		}
		result = append(result, *msg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockMessageRepository) FindPinned(discussionID uint) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.messages {
		if msg.DiscussionID == discussionID && msg.IsPinned {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockMessageRepository) SetPinned(id uint, pinned bool) error {
	msg, ok := m.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	msg.IsPinned = pinned
	return nil
}

func (m *MockMessageRepository) CountUnread(discussionID, userID uint) (int64, error) {
	var count int64
	for _, msg := range m.messages {
		if msg.DiscussionID == discussionID && msg.SenderID != userID {
			count++
		}
	}
	return count, nil
}

func (m *MockMessageRepository) AddReaction(messageID, userID uint, emoji string) error {
	for _, r := range m.reactions[messageID] {
		if r.UserID == userID && r.Emoji == emoji {
			return nil
		}
	}
	m.reactions[messageID] = append(m.reactions[messageID], models.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	})
	return nil
}

func (m *MockMessageRepository) RemoveReaction(messageID, userID uint, emoji string) error {
	reactions := m.reactions[messageID]
	for i, r := range reactions {
		if r.UserID == userID && r.Emoji == emoji {
			m.reactions[messageID] = append(reactions[:i], reactions[i+1:]...)
			return nil
		}
	}
	return nil
}

// MockDiscussionRepository is an in-memory DiscussionRepository.
type MockDiscussionRepository struct {
	discussions map[uint]*models.Discussion
	messages    *MockMessageRepository
	readStates  *MockReadStateRepository
	nextID      uint
}

func NewMockDiscussionRepository(messages *MockMessageRepository, readStates *MockReadStateRepository) *MockDiscussionRepository {
	return &MockDiscussionRepository{
		discussions: make(map[uint]*models.Discussion),
		messages:    messages,
		readStates:  readStates,
		nextID:      1,
	}
}

func (m *MockDiscussionRepository) Create(discussion *models.Discussion) error {
	if discussion.ID == 0 {
		discussion.ID = m.nextID
		m.nextID++
	}
	if discussion.LastActivityAt.IsZero() {
		discussion.LastActivityAt = time.Now()
	}
	m.discussions[discussion.ID] = discussion
	return nil
}

func (m *MockDiscussionRepository) FindByID(id uint) (*models.Discussion, error) {
	if d, ok := m.discussions[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDiscussionRepository) ListWithUnread(userID uint, limit int) ([]repository.DiscussionListRow, error) {
	var rows []repository.DiscussionListRow
	for _, d := range m.discussions {
		row := repository.DiscussionListRow{
			ID:             d.ID,
			Title:          d.Title,
			CreatedBy:      d.CreatedBy,
			Status:         d.Status,
			LastActivityAt: d.LastActivityAt,
			CreatedAt:      d.CreatedAt,
		}
		state, _ := m.readStates.Get(d.ID, userID)
		for _, msg := range m.messages.messages {
			if msg.DiscussionID != d.ID || msg.SenderID == userID {
				continue
			}
			if state == nil || msg.CreatedAt.After(state.LastReadAt) {
				row.UnreadCount++
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].LastActivityAt.After(rows[j].LastActivityAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *MockDiscussionRepository) BumpActivity(id uint, at time.Time) error {
	d, ok := m.discussions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if at.After(d.LastActivityAt) {
		d.LastActivityAt = at
	}
	return nil
}

func (m *MockDiscussionRepository) UpdateStatus(id uint, status models.DiscussionStatus) error {
	d, ok := m.discussions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Status = status
	return nil
}

// MockReadStateRepository is an in-memory read-state store.
type MockReadStateRepository struct {
	states map[[2]uint]*models.DiscussionReadState
}

func NewMockReadStateRepository() *MockReadStateRepository {
	return &MockReadStateRepository{states: make(map[[2]uint]*models.DiscussionReadState)}
}

func (m *MockReadStateRepository) Upsert(discussionID, userID uint, lastReadMessageID *uint, at time.Time) error {
	key := [2]uint{discussionID, userID}
	state, ok := m.states[key]
	if !ok {
		m.states[key] = &models.DiscussionReadState{
			DiscussionID:      discussionID,
			UserID:            userID,
			LastReadMessageID: lastReadMessageID,
			LastReadAt:        at,
		}
		return nil
	}
	if at.After(state.LastReadAt) {
		state.LastReadAt = at
	}
	if lastReadMessageID != nil && (state.LastReadMessageID == nil || *lastReadMessageID > *state.LastReadMessageID) {
		state.LastReadMessageID = lastReadMessageID
	}
	return nil
}

func (m *MockReadStateRepository) Get(discussionID, userID uint) (*models.DiscussionReadState, error) {
	if state, ok := m.states[[2]uint{discussionID, userID}]; ok {
		return state, nil
	}
	return nil, nil
}

func (m *MockReadStateRepository) Delete(discussionID, userID uint) error {
	delete(m.states, [2]uint{discussionID, userID})
	return nil
}
