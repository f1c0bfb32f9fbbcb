package models

import (
	"time"

	"gorm.io/gorm"
)

// Video categories mirror how content is grouped on the platform.
const (
	VideoTypeSatsang    = "satsang"
	VideoTypeMeditation = "meditation"
	VideoTypeCourse     = "course"
)

// Video is a playable content record. Playback is served either from the
// object store (ObjectKey) or an external player URL.
type Video struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Description string         `gorm:"type:text" json:"description"`
	Type        string         `gorm:"type:varchar(20);default:'satsang';index" json:"type" validate:"oneof=satsang meditation course"`
	ObjectKey   string         `gorm:"type:varchar(512);default:''" json:"-"`
	PlaybackURL string         `gorm:"type:varchar(512);default:''" json:"-"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	AlwaysFree  bool           `gorm:"default:false" json:"always_free"`
	ViewCount   int64          `gorm:"default:0" json:"view_count"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
