package repository

import (
	"time"

	"github.com/bodhiverse/bodhika/app/models"
	"gorm.io/gorm"
)

// webinarRepository implements the WebinarRepository interface
type webinarRepository struct {
	db *gorm.DB
}

// NewWebinarRepository creates a new webinar repository instance
func NewWebinarRepository(db *gorm.DB) WebinarRepository {
	return &webinarRepository{db: db}
}

// Create creates a new webinar in the database
func (r *webinarRepository) Create(webinar *models.Webinar) error {
	return r.db.Create(webinar).Error
}

// GetByID retrieves a webinar by its ID
func (r *webinarRepository) GetByID(id uint) (*models.Webinar, error) {
	var webinar models.Webinar
	err := r.db.First(&webinar, id).Error
	if err != nil {
		return nil, err
	}
	return &webinar, nil
}

// GetAll retrieves all webinars with pagination, soonest first
func (r *webinarRepository) GetAll(offset, limit int) ([]models.Webinar, error) {
	var webinars []models.Webinar
	err := r.db.Order("scheduled_date ASC, scheduled_time ASC").
		Offset(offset).Limit(limit).Find(&webinars).Error
	return webinars, err
}

// GetUpcoming retrieves webinars scheduled on or after the given day
func (r *webinarRepository) GetUpcoming(after time.Time, limit int) ([]models.Webinar, error) {
	var webinars []models.Webinar
	day := after.Truncate(24 * time.Hour)
	err := r.db.Where("scheduled_date >= ?", day).
		Order("scheduled_date ASC, scheduled_time ASC").
		Limit(limit).Find(&webinars).Error
	return webinars, err
}

// Update updates an existing webinar in the database
func (r *webinarRepository) Update(webinar *models.Webinar) error {
	return r.db.Save(webinar).Error
}

// Delete soft deletes a webinar by its ID
func (r *webinarRepository) Delete(id uint) error {
	return r.db.Delete(&models.Webinar{}, id).Error
}

// Count returns the total number of webinars
func (r *webinarRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Webinar{}).Count(&count).Error
	return count, err
}
