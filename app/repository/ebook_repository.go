package repository

import (
	"github.com/bodhiverse/bodhika/app/models"
	"gorm.io/gorm"
)

// ebookRepository implements the EBookRepository interface
type ebookRepository struct {
	db *gorm.DB
}

// NewEBookRepository creates a new ebook repository instance
func NewEBookRepository(db *gorm.DB) EBookRepository {
	return &ebookRepository{db: db}
}

// Create creates a new ebook in the database
func (r *ebookRepository) Create(ebook *models.EBook) error {
	return r.db.Create(ebook).Error
}

// GetByID retrieves an ebook by its ID
func (r *ebookRepository) GetByID(id uint) (*models.EBook, error) {
	var ebook models.EBook
	err := r.db.First(&ebook, id).Error
	if err != nil {
		return nil, err
	}
	return &ebook, nil
}

// GetActive retrieves active ebooks with pagination
func (r *ebookRepository) GetActive(offset, limit int) ([]models.EBook, error) {
	var ebooks []models.EBook
	err := r.db.Where("is_active = ?", true).Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&ebooks).Error
	return ebooks, err
}

// GetAll retrieves all ebooks with pagination
func (r *ebookRepository) GetAll(offset, limit int) ([]models.EBook, error) {
	var ebooks []models.EBook
	err := r.db.Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&ebooks).Error
	return ebooks, err
}

// Update updates an existing ebook in the database
func (r *ebookRepository) Update(ebook *models.EBook) error {
	return r.db.Save(ebook).Error
}

// Delete soft deletes an ebook by its ID
func (r *ebookRepository) Delete(id uint) error {
	return r.db.Delete(&models.EBook{}, id).Error
}

// Count returns the total number of ebooks
func (r *ebookRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.EBook{}).Count(&count).Error
	return count, err
}

// AddDownloads increments the download counter by n. Used by the counter
// flusher, which batches increments in Redis.
func (r *ebookRepository) AddDownloads(id uint, n int64) error {
	return r.db.Model(&models.EBook{}).Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + ?", n)).Error
}
