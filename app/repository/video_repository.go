package repository

import (
	"github.com/bodhiverse/bodhika/app/models"
	"gorm.io/gorm"
)

// videoRepository implements the VideoRepository interface
type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository instance
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// Create creates a new video in the database
func (r *videoRepository) Create(video *models.Video) error {
	return r.db.Create(video).Error
}

// GetByID retrieves a video by its ID
func (r *videoRepository) GetByID(id uint) (*models.Video, error) {
	var video models.Video
	err := r.db.First(&video, id).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByType retrieves videos of one type with pagination
func (r *videoRepository) GetByType(videoType string, offset, limit int) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.Where("type = ?", videoType).Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&videos).Error
	return videos, err
}

// GetAll retrieves all videos with pagination
func (r *videoRepository) GetAll(offset, limit int) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&videos).Error
	return videos, err
}

// Update updates an existing video in the database
func (r *videoRepository) Update(video *models.Video) error {
	return r.db.Save(video).Error
}

// Delete soft deletes a video by its ID
func (r *videoRepository) Delete(id uint) error {
	return r.db.Delete(&models.Video{}, id).Error
}

// Count returns the total number of videos
func (r *videoRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Video{}).Count(&count).Error
	return count, err
}

// AddViews increments the view counter by n
func (r *videoRepository) AddViews(id uint, n int64) error {
	return r.db.Model(&models.Video{}).Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + ?", n)).Error
}
