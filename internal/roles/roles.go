package roles

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Amnmlk2025/dunetube/internal/models"
)

// Ошибки уровня домена. Хендлеры переводят их в HTTP-статусы,
// здесь про HTTP ничего не знаем.
var (
	ErrRoleRequired    = errors.New("role is required")
	ErrRoleNotAssigned = errors.New("role not assigned")
)

// Service объединяет хранилище выданных ролей, трекер активной роли и
// проверку доступа. Никакого состояния в памяти — всё в БД, каждая
// операция укладывается в один запрос/транзакцию.
type Service struct {
	db          *gorm.DB
	defaultRole string
}

// NewService создает сервис ролей. defaultRole — политика инициализации:
// если непустая, она проставляется как активная при первом создании
// профиля (и только если пользователь этой ролью владеет). Пустая строка
// означает NULL до первой явной активации.
func NewService(db *gorm.DB, defaultRole string) *Service {
	return &Service{db: db, defaultRole: defaultRole}
}

// ListRoles возвращает все выданные пользователю роли, отсортированные
// по имени. Пустой список — не ошибка.
func (s *Service) ListRoles(userID uint) ([]string, error) {
	out := []string{}
	err := s.db.Model(&models.RoleAssignment{}).
		Where("user_id = ?", userID).
		Order("role").
		Pluck("role", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HasRole — есть ли у пользователя запись о выданной роли.
func (s *Service) HasRole(userID uint, role string) (bool, error) {
	return s.hasRole(s.db, userID, role)
}

func (s *Service) hasRole(db *gorm.DB, userID uint, role string) (bool, error) {
	var count int64
	err := db.Model(&models.RoleAssignment{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Assign выдает роль. Идемпотентно: повторная выдача той же роли —
// no-op за счет ON CONFLICT DO NOTHING по уникальной паре (user, role).
// Наружу через HTTP не торчит, это точка входа для провижининга и сидов.
func (s *Service) Assign(userID uint, role string) error {
	if role == "" {
		return ErrRoleRequired
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RoleAssignment{UserID: userID, Role: role}).Error
}

// GetActive возвращает активную роль и список доступных. Профиль
// создается лениво при первом обращении.
func (s *Service) GetActive(userID uint) (*string, []string, error) {
	profile, err := s.ensureProfile(s.db, userID)
	if err != nil {
		return nil, nil, err
	}
	available, err := s.ListRoles(userID)
	if err != nil {
		return nil, nil, err
	}
	return profile.ActiveRole, available, nil
}

// Activate переключает активную роль. Проверка владения и запись идут
// в одной транзакции: роль, отозванная между листингом и активацией,
// будет корректно отклонена, частичного состояния не остается.
func (s *Service) Activate(userID uint, role string) (string, error) {
	if role == "" {
		return "", ErrRoleRequired
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.hasRole(tx, userID, role)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoleNotAssigned
		}

		if _, err := s.ensureProfile(tx, userID); err != nil {
			return err
		}

		return tx.Model(&models.UserProfile{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"active_role": role,
				"updated_at":  time.Now(),
			}).Error
	})
	if err != nil {
		return "", err
	}
	return role, nil
}

// Authorize — проверка доступа по владению ролью, а не по активной роли:
// создатель, переключившийся в режим студента, не теряет доступ к студии.
// Суперпользователь проходит всегда. Отсутствие доступа — это false,
// а не ошибка.
func (s *Service) Authorize(userID uint, allowed ...string) (bool, error) {
	if userID == 0 || len(allowed) == 0 {
		return false, nil
	}

	var user models.User
	err := s.db.Select("is_superuser").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if user.IsSuperuser {
		return true, nil
	}

	var count int64
	err = s.db.Model(&models.RoleAssignment{}).
		Where("user_id = ? AND role IN ?", userID, allowed).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ensureProfile — get-or-create профиля через upsert по уникальному
// user_id: два одновременных первых обращения не создадут две записи.
// Дефолтная активная роль проставляется только при создании и только
// если пользователь ей владеет — иначе нарушился бы инвариант
// "active_role всегда из множества выданных ролей".
func (s *Service) ensureProfile(db *gorm.DB, userID uint) (*models.UserProfile, error) {
	row := models.UserProfile{UserID: userID}
	if s.defaultRole != "" {
		ok, err := s.hasRole(db, userID, s.defaultRole)
		if err != nil {
			return nil, err
		}
		if ok {
			def := s.defaultRole
			row.ActiveRole = &def
		}
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
