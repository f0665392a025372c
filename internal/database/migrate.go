package database

import (
	"github.com/Amnmlk2025/dunetube/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RoleAssignment{},
		&models.UserProfile{},
		&models.Course{},
		&models.Lesson{},
		&models.LessonProgress{},
		&models.LessonNote{},
		&models.Review{},
	)
}
