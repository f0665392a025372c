package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course (Курс)
type Course struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `json:"description"`
	PriceAmount   float64        `gorm:"type:numeric(10,2)" json:"price_amount"`
	PriceCurrency string         `gorm:"size:8" json:"price_currency"`
	Language      string         `gorm:"size:8" json:"language"`
	Tags          datatypes.JSON `json:"tags"`
	ThumbnailURL  string         `json:"thumbnail_url"`
	Publisher     string         `gorm:"size:255" json:"publisher"`
	OwnerID       uint           `gorm:"index" json:"owner_id"`

	Owner   User     `json:"-" gorm:"foreignKey:OwnerID"`
	Lessons []Lesson `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}
