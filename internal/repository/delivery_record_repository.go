package repository

import (
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"gorm.io/gorm"
)

type DeliveryRecordRepository struct {
	db *gorm.DB
}

func NewDeliveryRecordRepository(db *gorm.DB) *DeliveryRecordRepository {
	return &DeliveryRecordRepository{db: db}
}

func (r *DeliveryRecordRepository) Create(record *models.DeliveryRecord) error {
	return r.db.Create(record).Error
}

// SetClicked stamps clicked_at on every record of a notification that has
// not been clicked yet. Repeat clicks are no-ops; returns how many rows
// were stamped.
func (r *DeliveryRecordRepository) SetClicked(notificationID string, at time.Time) (int64, error) {
	res := r.db.Model(&models.DeliveryRecord{}).
		Where("notification_id = ? AND clicked_at IS NULL", notificationID).
		Update("clicked_at", at)
	return res.RowsAffected, res.Error
}

// StatusCounts aggregates attempts by status over a trailing window.
type StatusCounts struct {
	Sent      int64 `gorm:"column:sent" json:"sent"`
	Delivered int64 `gorm:"column:delivered" json:"delivered"`
	Failed    int64 `gorm:"column:failed" json:"failed"`
	Clicked   int64 `gorm:"column:clicked" json:"clicked"`
}

func (r *DeliveryRecordRepository) CountByStatus(since time.Time) (StatusCounts, error) {
	var counts StatusCounts
	err := r.db.Raw(`
		SELECT
			COUNT(*) AS sent,
			COUNT(*) FILTER (WHERE status = 'delivered') AS delivered,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE clicked_at IS NOT NULL) AS clicked
		FROM delivery_records
		WHERE sent_at >= ?
	`, since).Scan(&counts).Error
	return counts, err
}

// TypeBreakdownRow is the per-notification-type slice of the rollup.
type TypeBreakdownRow struct {
	NotificationType string `gorm:"column:notification_type" json:"notification_type"`
	Sent             int64  `gorm:"column:sent" json:"sent"`
	Delivered        int64  `gorm:"column:delivered" json:"delivered"`
	Failed           int64  `gorm:"column:failed" json:"failed"`
	Clicked          int64  `gorm:"column:clicked" json:"clicked"`
}

func (r *DeliveryRecordRepository) CountByType(since time.Time) ([]TypeBreakdownRow, error) {
	var rows []TypeBreakdownRow
	err := r.db.Raw(`
		SELECT
			notification_type,
			COUNT(*) AS sent,
			COUNT(*) FILTER (WHERE status = 'delivered') AS delivered,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE clicked_at IS NOT NULL) AS clicked
		FROM delivery_records
		WHERE sent_at >= ?
		GROUP BY notification_type
		ORDER BY notification_type
	`, since).Scan(&rows).Error
	return rows, err
}

// CleanupOld drops records past the retention horizon.
func (r *DeliveryRecordRepository) CleanupOld(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return r.db.Where("sent_at < ?", cutoff).Delete(&models.DeliveryRecord{}).Error
}
