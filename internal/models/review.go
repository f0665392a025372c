package models

import "time"

// Review - Отзыв к курсу. Один отзыв на пользователя в рамках курса.
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint   `gorm:"uniqueIndex:idx_course_user;not null" json:"user_id"`
	CourseID uint   `gorm:"uniqueIndex:idx_course_user;not null" json:"course_id"`
	Rating   int    `json:"rating"` // 1-5
	Text     string `json:"text"`

	User   User   `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Course Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;"`
}
