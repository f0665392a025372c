package models

import "time"

// Lesson (Урок). Позиция уникальна внутри курса — порядок детерминирован.
type Lesson struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CourseID        uint   `gorm:"uniqueIndex:idx_course_position;index;not null" json:"course"`
	Position        int    `gorm:"uniqueIndex:idx_course_position;default:1" json:"position"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Description     string `json:"description"`
	VideoURL        string `json:"video_url"`
	DurationSeconds int    `json:"duration_seconds"`
	IsFreePreview   bool   `json:"is_free_preview"`

	Course Course `json:"-" gorm:"foreignKey:CourseID"`
}

// LessonProgress — позиция просмотра урока для конкретного пользователя.
// Пара (user, lesson) уникальна, запись создается лениво (get-or-create).
type LessonProgress struct {
	ID           uint      `gorm:"primarykey" json:"-"`
	UserID       uint      `gorm:"uniqueIndex:idx_user_lesson;not null" json:"-"`
	LessonID     uint      `gorm:"uniqueIndex:idx_user_lesson;not null" json:"-"`
	LastPosition int       `json:"last_position"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Lesson Lesson `json:"-" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE;"`
}

// LessonNote — личная заметка к уроку с таймкодом (секунды от начала видео).
type LessonNote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    uint   `gorm:"index;not null" json:"-"`
	LessonID  uint   `gorm:"index;not null" json:"lesson"`
	Body      string `json:"body"`
	Timestamp int    `json:"timestamp"`

	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Lesson Lesson `json:"-" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE;"`
}
