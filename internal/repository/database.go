package repository

import (
	"fmt"
	"os"

	"github.com/amoralabs/amora-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB() (*gorm.DB, error) {
	// Build connection string
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	// Connect to database
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.User{},
		&models.Discussion{},
		&models.Message{},
		&models.Reaction{},
		&models.PendingNotification{},
		&models.PushSubscription{},
		&models.DeliveryRecord{},
		&models.DiscussionReadState{},
		&models.NotificationPreference{},
	); err != nil {
		return nil, err
	}

	// AutoMigrate cannot express partial indexes. This one backs the
	// single-unsent-row-per-(discussion, recipient) invariant that the
	// aggregation upsert relies on.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_pending_unsent
		ON pending_notifications (discussion_id, recipient_id)
		WHERE is_sent = false AND deleted_at IS NULL
	`).Error; err != nil {
		return nil, err
	}

	return db, nil
}
