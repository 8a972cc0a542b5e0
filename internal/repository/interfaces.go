package repository

import (
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	FindByID(id uint) (*models.User, error)
	FindPartner(userID uint) (*models.User, error)
	UpdateOnlineStatus(userID uint, isOnline bool) error
}

// DiscussionRepositoryInterface defines the contract for discussion repository operations
type DiscussionRepositoryInterface interface {
	Create(discussion *models.Discussion) error
	FindByID(id uint) (*models.Discussion, error)
	ListWithUnread(userID uint, limit int) ([]DiscussionListRow, error)
	BumpActivity(id uint, at time.Time) error
	UpdateStatus(id uint, status models.DiscussionStatus) error
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	FindByDiscussion(discussionID uint, cursor uint, limit int) ([]models.Message, error)
	FindPinned(discussionID uint) ([]models.Message, error)
	SetPinned(id uint, pinned bool) error
	CountUnread(discussionID, userID uint) (int64, error)
	AddReaction(messageID, userID uint, emoji string) error
	RemoveReaction(messageID, userID uint, emoji string) error
}

// PendingNotificationRepositoryInterface defines the contract for the aggregation store
type PendingNotificationRepositoryInterface interface {
	GroupOrCreate(in GroupOrCreateInput, window time.Duration) (*models.PendingNotification, bool, error)
	CreateSent(in GroupOrCreateInput) (*models.PendingNotification, error)
	MarkSent(id uint) error
	FindUnsent(discussionID, recipientID uint) (*models.PendingNotification, error)
	CountSentSince(senderID uint, typ models.NotificationType, since time.Time) (int64, error)
	LastSentAt(senderID uint, typ models.NotificationType) (*time.Time, error)
	CleanupOld(olderThan time.Duration) error
}

// PushSubscriptionRepositoryInterface defines the contract for the subscription registry
type PushSubscriptionRepositoryInterface interface {
	Upsert(userID uint, endpoint, p256dh, auth string) error
	Remove(userID uint, endpoint string) error
	ListActive(userID uint) ([]models.PushSubscription, error)
	LatestEndpoint(userID uint) (string, error)
	CountForUser(userID uint) (int64, error)
}

// DeliveryRecordRepositoryInterface defines the contract for delivery analytics storage
type DeliveryRecordRepositoryInterface interface {
	Create(record *models.DeliveryRecord) error
	SetClicked(notificationID string, at time.Time) (int64, error)
	CountByStatus(since time.Time) (StatusCounts, error)
	CountByType(since time.Time) ([]TypeBreakdownRow, error)
	CleanupOld(olderThan time.Duration) error
}

// DiscussionReadStateRepositoryInterface defines the contract for read-state operations
type DiscussionReadStateRepositoryInterface interface {
	Upsert(discussionID, userID uint, lastReadMessageID *uint, at time.Time) error
	Get(discussionID, userID uint) (*models.DiscussionReadState, error)
	Delete(discussionID, userID uint) error
}

// NotificationPreferenceRepositoryInterface defines the contract for persisted preference flags
type NotificationPreferenceRepositoryInterface interface {
	Upsert(userID uint, key string, value bool) error
	Get(userID uint, key string) (bool, error)
	ListForUser(userID uint) ([]models.NotificationPreference, error)
}
