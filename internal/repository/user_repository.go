package repository

import (
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindPartner resolves the one other user in the space.
func (r *UserRepository) FindPartner(userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.Where("partner_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateOnlineStatus(userID uint, isOnline bool) error {
	updates := map[string]interface{}{"is_online": isOnline}
	if !isOnline {
		now := time.Now()
		updates["last_seen"] = &now
	}
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}
