package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Amnmlk2025/dunetube/internal/models"
	"github.com/Amnmlk2025/dunetube/internal/roles"
)

// SaveUser finds a user by Google ID or email; if found, it updates, otherwise, it creates.
// Новому пользователю сразу выдаем роль student и создаем профиль —
// это единственная точка провижининга при входе через Google.
func SaveUser(db *gorm.DB, roleSvc *roles.Service, userInfo models.User) (uint, error) {
	var existingUser models.User

	// 1. Ищем пользователя по Google ID, затем по email: аккаунт мог быть
	// заведен по паролю до первого входа через Google.
	result := db.Where("google_id = ?", userInfo.GoogleID).First(&existingUser)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		result = db.Where("email = ?", userInfo.Email).First(&existingUser)
	}

	if result.Error == nil {
		// --- CASE 1: USER FOUND (UPDATE) ---
		updates := map[string]interface{}{
			"google_id": userInfo.GoogleID,
			"name":      userInfo.Name,
			"picture":   userInfo.Picture,
			// IsSuperuser и роли здесь не трогаем — ими управляет админ
		}

		if err := db.Model(&existingUser).Updates(updates).Error; err != nil {
			return 0, err
		}
		return existingUser.ID, nil

	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// --- CASE 2: USER NOT FOUND (CREATE) ---
		if err := db.Create(&userInfo).Error; err != nil {
			return 0, err
		}

		// Провижининг: стартовая роль + ленивый профиль
		if err := roleSvc.Assign(userInfo.ID, models.RoleStudent); err != nil {
			return 0, err
		}
		if _, _, err := roleSvc.GetActive(userInfo.ID); err != nil {
			return 0, err
		}
		return userInfo.ID, nil

	} else {
		// --- CASE 3: DATABASE ERROR ---
		return 0, result.Error
	}
}
