package service

import (
	"time"

	"github.com/amoralabs/amora-backend/internal/cache"
	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/repository"
)

type DiscussionService struct {
	discussionRepo repository.DiscussionRepositoryInterface
	readStateRepo  repository.DiscussionReadStateRepositoryInterface
	messageRepo    repository.MessageRepositoryInterface
	syncCache      *cache.SyncCache
}

func NewDiscussionService(
	discussionRepo repository.DiscussionRepositoryInterface,
	readStateRepo repository.DiscussionReadStateRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	syncCache *cache.SyncCache,
) *DiscussionService {
	return &DiscussionService{
		discussionRepo: discussionRepo,
		readStateRepo:  readStateRepo,
		messageRepo:    messageRepo,
		syncCache:      syncCache,
	}
}

func (s *DiscussionService) Create(userID uint, title string) (*models.Discussion, error) {
	discussion := &models.Discussion{
		Title:          title,
		CreatedBy:      userID,
		Status:         models.DiscussionOpen,
		LastActivityAt: time.Now(),
	}
	if err := s.discussionRepo.Create(discussion); err != nil {
		return nil, err
	}
	s.syncCache.InvalidateDiscussionListAll()
	return discussion, nil
}

func (s *DiscussionService) Get(id uint) (*models.Discussion, error) {
	return s.discussionRepo.FindByID(id)
}

// List returns the viewer's discussions with unread counts, newest
// activity first.
func (s *DiscussionService) List(userID uint, limit int) ([]models.DiscussionResponse, error) {
	if cached, ok := s.syncCache.GetDiscussionList(userID); ok {
		return cached, nil
	}

	rows, err := s.discussionRepo.ListWithUnread(userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.DiscussionResponse, len(rows))
	for i, row := range rows {
		out[i] = models.DiscussionResponse{
			ID:             row.ID,
			Title:          row.Title,
			CreatedBy:      row.CreatedBy,
			Status:         row.Status,
			LastActivityAt: row.LastActivityAt,
			UnreadCount:    row.UnreadCount,
			CreatedAt:      row.CreatedAt,
		}
	}

	_ = s.syncCache.SetDiscussionList(userID, out)
	return out, nil
}

// MarkRead upserts the viewer's read state at now. The unread counter
// resets immediately; a message landing in the same instant shows up on
// the next sync pass instead.
func (s *DiscussionService) MarkRead(discussionID, userID uint, lastReadMessageID *uint) error {
	if err := s.readStateRepo.Upsert(discussionID, userID, lastReadMessageID, time.Now()); err != nil {
		return err
	}
	_ = s.syncCache.SetUnreadCount(userID, discussionID, 0)
	s.syncCache.InvalidateDiscussionList(userID)
	return nil
}

// UnreadCount computes the viewer's unread count for one discussion.
// No read-state row means every partner message counts.
func (s *DiscussionService) UnreadCount(discussionID, userID uint) (int64, error) {
	if count, ok := s.syncCache.GetUnreadCount(userID, discussionID); ok {
		return count, nil
	}
	count, err := s.messageRepo.CountUnread(discussionID, userID)
	if err != nil {
		return 0, err
	}
	_ = s.syncCache.SetUnreadCount(userID, discussionID, count)
	return count, nil
}

// SetStatus transitions a discussion and reports the updated row.
func (s *DiscussionService) SetStatus(discussionID uint, status models.DiscussionStatus) (*models.Discussion, error) {
	if err := s.discussionRepo.UpdateStatus(discussionID, status); err != nil {
		return nil, err
	}
	s.syncCache.InvalidateDiscussionListAll()
	return s.discussionRepo.FindByID(discussionID)
}
