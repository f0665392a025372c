package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Amnmlk2025/dunetube/internal/auth"
	"github.com/Amnmlk2025/dunetube/internal/roles"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID достает ID аутентифицированного пользователя из контекста запроса.
func UserID(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(userIDKey).(uint)
	return id, ok && id != 0
}

func jsonDetail(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"detail": message})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth проверяет Bearer-токен и кладет ID пользователя в контекст.
// Без валидного access-токена дальше не пускаем.
func RequireAuth(tokens *auth.TokenManager) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				jsonDetail(w, "authentication credentials were not provided", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.Parse(token, "access")
			if err != nil {
				jsonDetail(w, "token is invalid or expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// OptionalAuth — для публичных endpoint-ов, которые ведут себя богаче
// для вошедших (например, встраивают прогресс в уроки). Невалидный или
// отсутствующий токен не ошибка, запрос идет дальше анонимно.
func OptionalAuth(tokens *auth.TokenManager) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if userID, err := tokens.Parse(token, "access"); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
				}
			}
			next.ServeHTTP(w, r)
		}
	}
}

// RequireRole пускает дальше только владельцев одной из перечисленных
// ролей (или суперпользователя). Проверяется владение ролью, а не
// текущая активная роль. Вешается поверх RequireAuth.
func RequireRole(gate *roles.Service, allowed ...string) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r)
			if !ok {
				jsonDetail(w, "authentication credentials were not provided", http.StatusUnauthorized)
				return
			}

			authorized, err := gate.Authorize(userID, allowed...)
			if err != nil {
				jsonDetail(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if !authorized {
				jsonDetail(w, "you do not have permission to perform this action", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}
