package repository

import (
	"time"

	"github.com/bodhiverse/bodhika/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription in the database
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByID retrieves a subscription by its ID
func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByUserID retrieves all subscriptions for a user, newest first
func (r *subscriptionRepository) GetByUserID(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("start_date DESC").Find(&subs).Error
	return subs, err
}

// GetActiveByUserID retrieves active subscriptions for a user, newest first
func (r *subscriptionRepository) GetActiveByUserID(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("start_date DESC").Find(&subs).Error
	return subs, err
}

// Update updates an existing subscription in the database
func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// Deactivate clears the active flag on a subscription
func (r *subscriptionRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Subscription{}).Where("id = ?", id).
		Update("is_active", false).Error
}

// DeactivateExpired clears the active flag on every subscription whose end
// date has passed and returns the number of rows touched.
func (r *subscriptionRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.Subscription{}).
		Where("is_active = ? AND end_date < ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// CountActiveByType returns the number of active subscriptions of a plan type
func (r *subscriptionRepository) CountActiveByType(planType string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("type = ? AND is_active = ?", planType, true).
		Count(&count).Error
	return count, err
}
