package models

import "time"

// User — учетная запись. Пароль храним только как bcrypt-хеш,
// GoogleID заполняется при входе через Google OAuth.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	GoogleID     string `gorm:"index;size:64" json:"-"`
	Email        string `gorm:"uniqueIndex;size:255" json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	PasswordHash string `json:"-"`
	IsSuperuser  bool   `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
