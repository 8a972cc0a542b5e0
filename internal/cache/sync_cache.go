package cache

import (
	"fmt"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// TTL constants for different cache types
const (
	DiscussionListTTL = 2 * time.Minute
	UnreadCountTTL    = 1 * time.Minute
)

// SyncCache keeps discussion-list payloads and unread counters warm so
// the sync endpoints don't hammer Postgres on every poll. Entries are
// short-lived; the database stays the source of truth.
type SyncCache struct {
	redis *RedisCache
}

func NewSyncCache(redis *RedisCache) *SyncCache {
	return &SyncCache{redis: redis}
}

func discussionListKey(userID uint) string {
	return fmt.Sprintf("disclist:%d", userID)
}

func unreadKey(userID, discussionID uint) string {
	return fmt.Sprintf("unread:%d:%d", userID, discussionID)
}

// GetDiscussionList retrieves the cached discussion list for a user
func (sc *SyncCache) GetDiscussionList(userID uint) ([]models.DiscussionResponse, bool) {
	if sc == nil || sc.redis == nil {
		return nil, false
	}
	data, err := sc.redis.Get(discussionListKey(userID))
	if err != nil || data == nil {
		return nil, false
	}

	var list []models.DiscussionResponse
	if err := msgpack.Unmarshal(data, &list); err != nil {
		return nil, false
	}
	return list, true
}

// SetDiscussionList caches the discussion list for a user
func (sc *SyncCache) SetDiscussionList(userID uint, list []models.DiscussionResponse) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(list)
	if err != nil {
		return err
	}
	return sc.redis.Set(discussionListKey(userID), data, DiscussionListTTL)
}

// InvalidateDiscussionList removes one user's cached list
func (sc *SyncCache) InvalidateDiscussionList(userID uint) {
	if sc == nil || sc.redis == nil {
		return
	}
	_ = sc.redis.Delete(discussionListKey(userID))
}

// InvalidateDiscussionListAll removes every cached list. The space only
// has two members, so the pattern sweep is cheap.
func (sc *SyncCache) InvalidateDiscussionListAll() {
	if sc == nil || sc.redis == nil {
		return
	}
	_ = sc.redis.DeletePattern("disclist:*")
}

// GetUnreadCount retrieves a cached unread counter
func (sc *SyncCache) GetUnreadCount(userID, discussionID uint) (int64, bool) {
	if sc == nil || sc.redis == nil {
		return 0, false
	}
	data, err := sc.redis.Get(unreadKey(userID, discussionID))
	if err != nil || data == nil {
		return 0, false
	}

	var count int64
	if err := msgpack.Unmarshal(data, &count); err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadCount caches an unread counter
func (sc *SyncCache) SetUnreadCount(userID, discussionID uint, count int64) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(count)
	if err != nil {
		return err
	}
	return sc.redis.Set(unreadKey(userID, discussionID), data, UnreadCountTTL)
}

// InvalidateUnreadCounts drops every user's counter for a discussion.
func (sc *SyncCache) InvalidateUnreadCounts(discussionID uint) {
	if sc == nil || sc.redis == nil {
		return
	}
	_ = sc.redis.DeletePattern(fmt.Sprintf("unread:*:%d", discussionID))
}
