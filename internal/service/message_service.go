package service

import (
	"errors"
	"time"

	"github.com/amoralabs/amora-backend/internal/cache"
	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/repository"
	"gorm.io/gorm"
)

type MessageService struct {
	messageRepo    repository.MessageRepositoryInterface
	discussionRepo repository.DiscussionRepositoryInterface
	syncCache      *cache.SyncCache
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	discussionRepo repository.DiscussionRepositoryInterface,
	syncCache *cache.SyncCache,
) *MessageService {
	return &MessageService{
		messageRepo:    messageRepo,
		discussionRepo: discussionRepo,
		syncCache:      syncCache,
	}
}

type SendMessageInput struct {
	DiscussionID uint               `json:"discussion_id"`
	ClientID     string             `json:"client_id"`
	Content      string             `json:"content"`
	MessageType  models.MessageType `json:"message_type"`
	ParentID     *uint              `json:"parent_id"`
}

// Send persists a message and bumps the discussion's activity clock.
// Duplicate client ids return the already-stored message so retrying
// clients don't double-post.
func (s *MessageService) Send(senderID uint, input SendMessageInput) (*models.Message, error) {
	if input.ClientID != "" {
		if existing, err := s.messageRepo.FindByClientID(input.ClientID, senderID); err == nil {
			return existing, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	message := &models.Message{
		ClientID:     input.ClientID,
		DiscussionID: input.DiscussionID,
		SenderID:     senderID,
		Content:      input.Content,
		MessageType:  input.MessageType,
		ParentID:     input.ParentID,
	}
	if message.MessageType == "" {
		message.MessageType = models.TextMessage
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	if err := s.discussionRepo.BumpActivity(input.DiscussionID, time.Now()); err != nil {
		return nil, err
	}
	s.syncCache.InvalidateDiscussionListAll()
	s.syncCache.InvalidateUnreadCounts(input.DiscussionID)

	// Load sender info
	return s.messageRepo.FindByID(message.ID)
}

// List fetches a page of a discussion's messages, newest first.
func (s *MessageService) List(discussionID uint, cursor uint, limit int) ([]models.Message, error) {
	return s.messageRepo.FindByDiscussion(discussionID, cursor, limit)
}

// ListPinned returns the pinned messages of a discussion, oldest first.
func (s *MessageService) ListPinned(discussionID uint) ([]models.Message, error) {
	return s.messageRepo.FindPinned(discussionID)
}

// SetPinned pins or unpins a message and returns the updated row.
func (s *MessageService) SetPinned(messageID uint, pinned bool) (*models.Message, error) {
	if err := s.messageRepo.SetPinned(messageID, pinned); err != nil {
		return nil, err
	}
	return s.messageRepo.FindByID(messageID)
}

// React toggles nothing: adding the same emoji twice stays one row.
func (s *MessageService) React(messageID, userID uint, emoji string) (*models.Message, error) {
	if err := s.messageRepo.AddReaction(messageID, userID, emoji); err != nil {
		return nil, err
	}
	return s.messageRepo.FindByID(messageID)
}

func (s *MessageService) Unreact(messageID, userID uint, emoji string) (*models.Message, error) {
	if err := s.messageRepo.RemoveReaction(messageID, userID, emoji); err != nil {
		return nil, err
	}
	return s.messageRepo.FindByID(messageID)
}

func (s *MessageService) Get(messageID uint) (*models.Message, error) {
	return s.messageRepo.FindByID(messageID)
}
