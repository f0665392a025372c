package models

import "time"

// Известные роли. Роли храним строками, а не enum-ом:
// набор может расширяться без миграции.
const (
	RoleStudent = "student"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// RoleAssignment — выданная пользователю роль. Пара (user, role)
// уникальна: одну роль нельзя выдать дважды. Запись не обновляется —
// только создается и удаляется каскадом вместе с пользователем.
type RoleAssignment struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	UserID     uint      `gorm:"uniqueIndex:idx_user_role;not null" json:"-"`
	Role       string    `gorm:"uniqueIndex:idx_user_role;size:32;not null" json:"role"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

// UserProfile — профиль с текущей активной ролью. Создается лениво при
// первом обращении. ActiveRole либо NULL (до первой активации), либо
// одна из выданных пользователю ролей.
type UserProfile struct {
	ID         uint    `gorm:"primarykey" json:"-"`
	UserID     uint    `gorm:"uniqueIndex;not null" json:"-"`
	ActiveRole *string `gorm:"size:32" json:"active_role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}
