package models

import (
	"time"

	"gorm.io/gorm"
)

// EBook is a downloadable content record stored in the object store.
type EBook struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Author         string         `gorm:"type:varchar(150);default:''" json:"author"`
	ObjectKey      string         `gorm:"type:varchar(512);not null" json:"-"`
	CoverObjectKey string         `gorm:"type:varchar(512);default:''" json:"-"`
	FileType       string         `gorm:"type:varchar(10);default:'pdf'" json:"file_type" validate:"oneof=pdf epub"`
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`
	AlwaysFree     bool           `gorm:"default:true" json:"always_free"`
	DownloadCount  int64          `gorm:"default:0" json:"download_count"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
