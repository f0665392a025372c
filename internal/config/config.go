package config

import (
	"os"
	"strconv"
	"time"
)

// Config — все настройки сервиса из переменных окружения.
// .env подгружается в main через godotenv, здесь только чтение.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	SessionKey         string

	MediaRoot string

	// DefaultActiveRole — политика инициализации активной роли.
	// Пустая строка: активная роль остается NULL до первой активации.
	DefaultActiveRole string
}

func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		AccessTTL:  getDuration("JWT_ACCESS_TTL_MIN", 30) * time.Minute,
		RefreshTTL: getDuration("JWT_REFRESH_TTL_MIN", 60*24*7) * time.Minute,

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		SessionKey:         os.Getenv("SESSION_KEY"),

		MediaRoot: getEnv("MEDIA_ROOT", "./media"),

		DefaultActiveRole: os.Getenv("DEFAULT_ACTIVE_ROLE"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallbackMinutes int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(fallbackMinutes)
}
