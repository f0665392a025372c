package database

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Amnmlk2025/dunetube/internal/auth"
	"github.com/Amnmlk2025/dunetube/internal/models"
	"github.com/Amnmlk2025/dunetube/internal/roles"
)

// Seed наполняет пустую базу демо-данными: три пользователя с ролями
// и шесть опубликованных курсов с уроками. Повторный запуск безопасен —
// всё через FirstOrCreate и идемпотентный Assign.
func Seed(db *gorm.DB, roleSvc *roles.Service) error {
	demoHash, err := auth.HashPassword("dunetube-demo")
	if err != nil {
		return err
	}

	seedUsers := []struct {
		email     string
		name      string
		superuser bool
		roles     []string
	}{
		{"admin@dunetube.local", "Амин Администратор", true, []string{models.RoleAdmin, models.RoleCreator, models.RoleStudent}},
		{"creator@dunetube.local", "Карима Создатель", false, []string{models.RoleCreator, models.RoleStudent}},
		{"student@dunetube.local", "Селим Студент", false, []string{models.RoleStudent}},
	}

	var creator models.User
	for _, su := range seedUsers {
		user := models.User{
			Email:        su.email,
			Name:         su.name,
			PasswordHash: demoHash,
			IsSuperuser:  su.superuser,
		}
		if err := db.Where(models.User{Email: su.email}).FirstOrCreate(&user).Error; err != nil {
			return err
		}
		for _, role := range su.roles {
			if err := roleSvc.Assign(user.ID, role); err != nil {
				return err
			}
		}
		if su.email == "creator@dunetube.local" {
			creator = user
		}
	}

	seedCourses := []models.Course{
		{Title: "Atreides Leadership", Description: "Принятие решений в условиях неопределенности.", PriceAmount: 49.00, PriceCurrency: "USD", Language: "en", Publisher: "Caladan Academy", Tags: datatypes.JSON([]byte(`["leadership","strategy"]`))},
		{Title: "Desert Survival Basics", Description: "Вода, тень и дисциплина: как выжить в пустыне.", PriceAmount: 29.00, PriceCurrency: "USD", Language: "en", Publisher: "Sietch Tabr", Tags: datatypes.JSON([]byte(`["survival","desert"]`))},
		{Title: "Spice Market Analytics", Description: "Чтение рынков и цен на ресурсных площадках.", PriceAmount: 59.00, PriceCurrency: "USD", Language: "en", Publisher: "CHOAM School", Tags: datatypes.JSON([]byte(`["finance","analytics"]`))},
		{Title: "Введение в Go", Description: "Практический курс по Go для backend-разработки.", PriceAmount: 39.00, PriceCurrency: "USD", Language: "ru", Publisher: "DuneTube Originals", Tags: datatypes.JSON([]byte(`["go","backend"]`))},
		{Title: "Ornithopter Maintenance", Description: "Регламентные работы и диагностика орнитоптера.", PriceAmount: 75.00, PriceCurrency: "USD", Language: "en", Publisher: "Arrakeen Tech", Tags: datatypes.JSON([]byte(`["engineering"]`))},
		{Title: "Mentat Memory Training", Description: "Тренировка памяти и концентрации.", PriceAmount: 19.00, PriceCurrency: "USD", Language: "en", Publisher: "Mentat Guild", Tags: datatypes.JSON([]byte(`["memory","focus"]`))},
	}

	for i := range seedCourses {
		course := seedCourses[i]
		course.OwnerID = creator.ID
		if err := db.Where(models.Course{Title: course.Title}).
			Attrs(course).FirstOrCreate(&course).Error; err != nil {
			return err
		}

		// По три урока на курс, позиции 1..3
		for pos := 1; pos <= 3; pos++ {
			lesson := models.Lesson{
				CourseID:        course.ID,
				Position:        pos,
				Title:           fmt.Sprintf("%s — урок %d", course.Title, pos),
				DurationSeconds: 300 + 60*pos,
				IsFreePreview:   pos == 1,
			}
			if err := db.Where(models.Lesson{CourseID: course.ID, Position: pos}).
				Attrs(lesson).FirstOrCreate(&lesson).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
