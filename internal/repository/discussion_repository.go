package repository

import (
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"gorm.io/gorm"
)

type DiscussionRepository struct {
	db *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

func (r *DiscussionRepository) Create(discussion *models.Discussion) error {
	if discussion.LastActivityAt.IsZero() {
		discussion.LastActivityAt = time.Now()
	}
	return r.db.Create(discussion).Error
}

func (r *DiscussionRepository) FindByID(id uint) (*models.Discussion, error) {
	var discussion models.Discussion
	if err := r.db.First(&discussion, id).Error; err != nil {
		return nil, err
	}
	return &discussion, nil
}

// DiscussionListRow is a discussion plus the viewer's unread count.
type DiscussionListRow struct {
	ID             uint                    `gorm:"column:id"`
	Title          string                  `gorm:"column:title"`
	CreatedBy      uint                    `gorm:"column:created_by"`
	Status         models.DiscussionStatus `gorm:"column:status"`
	LastActivityAt time.Time               `gorm:"column:last_activity_at"`
	CreatedAt      time.Time               `gorm:"column:created_at"`
	UnreadCount    int64                   `gorm:"column:unread_count"`
}

// ListWithUnread returns the space's discussions newest-activity first.
// A missing read-state row counts every partner message as unread; that
// matches how clients with no local state behave after a cold load.
func (r *DiscussionRepository) ListWithUnread(userID uint, limit int) ([]DiscussionListRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rows []DiscussionListRow
	err := r.db.Raw(`
		SELECT
			d.id, d.title, d.created_by, d.status, d.last_activity_at, d.created_at,
			(
				SELECT COUNT(*)
				FROM messages m
				WHERE m.discussion_id = d.id
					AND m.deleted_at IS NULL
					AND m.sender_id <> ?
					AND (rs.discussion_id IS NULL OR m.created_at > rs.last_read_at)
			) AS unread_count
		FROM discussions d
		LEFT JOIN discussion_read_states rs
			ON rs.discussion_id = d.id AND rs.user_id = ?
		WHERE d.deleted_at IS NULL
		ORDER BY d.last_activity_at DESC, d.id DESC
		LIMIT ?
	`, userID, userID, limit).Scan(&rows).Error
	return rows, err
}

// BumpActivity advances last_activity_at, never rewinds it.
func (r *DiscussionRepository) BumpActivity(id uint, at time.Time) error {
	return r.db.Exec(`
		UPDATE discussions
		SET last_activity_at = GREATEST(last_activity_at, ?), updated_at = NOW()
		WHERE id = ?
	`, at, id).Error
}

func (r *DiscussionRepository) UpdateStatus(id uint, status models.DiscussionStatus) error {
	return r.db.Model(&models.Discussion{}).
		Where("id = ?", id).
		Update("status", status).Error
}
