package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/roles"
)

// HandleRoles - GET /auth/roles/ : активная роль и список доступных.
// Профиль создается лениво при первом обращении.
func (h *Handler) HandleRoles(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	active, available, err := h.Roles.GetActive(userID)
	if err != nil {
		h.Log.Errorw("не удалось получить роли", "user_id", userID, "error", err)
		jsonDetail(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active_role":     active,
		"available_roles": available,
	})
}

// HandleActivateRole - POST /auth/roles/activate : переключение
// активной роли. Владение ролью перепроверяется в момент активации,
// а не берется из ранее отданного списка.
func (h *Handler) HandleActivateRole(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var input struct {
		Role string `json:"role"`
	}
	// Пустое тело равнозначно пустой роли — валидация ниже
	_ = json.NewDecoder(r.Body).Decode(&input)

	active, err := h.Roles.Activate(userID, input.Role)
	if err != nil {
		switch {
		case errors.Is(err, roles.ErrRoleRequired):
			jsonDetail(w, "role is required", http.StatusBadRequest)
		case errors.Is(err, roles.ErrRoleNotAssigned):
			jsonDetail(w, "role not assigned", http.StatusBadRequest)
		default:
			h.Log.Errorw("не удалось активировать роль", "user_id", userID, "role", input.Role, "error", err)
			jsonDetail(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"active_role": active})
}
