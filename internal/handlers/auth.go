package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Amnmlk2025/dunetube/internal/auth"
	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/models"
	"github.com/Amnmlk2025/dunetube/internal/storage"
)

// HandleToken - POST /api/token/ : вход по паролю, выдает пару access+refresh.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonDetail(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	// Логином служит email; поле username оставлено для совместимости
	login := input.Username
	if login == "" {
		login = input.Email
	}
	if login == "" || input.Password == "" {
		jsonDetail(w, "username and password are required", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", login).First(&user).Error; err != nil {
		jsonDetail(w, "no active account found with the given credentials", http.StatusUnauthorized)
		return
	}
	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, input.Password) {
		jsonDetail(w, "no active account found with the given credentials", http.StatusUnauthorized)
		return
	}

	pair, err := h.Tokens.IssuePair(user.ID)
	if err != nil {
		h.Log.Errorw("не удалось выпустить токены", "user_id", user.ID, "error", err)
		jsonDetail(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// HandleTokenRefresh - POST /api/token/refresh/ : новый access по refresh-токену.
func (h *Handler) HandleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Refresh == "" {
		jsonDetail(w, "refresh is required", http.StatusBadRequest)
		return
	}

	userID, err := h.Tokens.Parse(input.Refresh, "refresh")
	if err != nil {
		jsonDetail(w, "token is invalid or expired", http.StatusUnauthorized)
		return
	}

	access, err := h.Tokens.IssueAccess(userID)
	if err != nil {
		h.Log.Errorw("не удалось выпустить access-токен", "user_id", userID, "error", err)
		jsonDetail(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	// state кладем в cookie-сессию и сверяем на callback-е
	state := uuid.NewString()
	session, _ := h.Store.Get(r, "oauth")
	session.Values["state"] = state
	session.Save(r, w)

	url := h.OAuth.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, "oauth")
	savedState, _ := session.Values["state"].(string)
	if savedState == "" || r.URL.Query().Get("state") != savedState {
		jsonDetail(w, "invalid state", http.StatusUnauthorized)
		return
	}
	// state одноразовый
	delete(session.Values, "state")
	session.Save(r, w)

	code := r.URL.Query().Get("code")
	token, err := h.OAuth.Exchange(context.Background(), code)
	if err != nil {
		jsonDetail(w, "token exchange error", http.StatusBadRequest)
		return
	}

	client := h.OAuth.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		jsonDetail(w, "google API error", http.StatusBadRequest)
		return
	}
	defer resp.Body.Close()

	var userInfo struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		jsonDetail(w, "JSON decode error", http.StatusInternalServerError)
		return
	}

	userID, err := storage.SaveUser(h.DB, h.Roles, models.User{
		GoogleID: userInfo.ID,
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Picture:  userInfo.Picture,
	})
	if err != nil {
		h.Log.Errorw("не удалось сохранить пользователя Google", "error", err)
		jsonDetail(w, "DB save error", http.StatusInternalServerError)
		return
	}

	pair, err := h.Tokens.IssuePair(userID)
	if err != nil {
		h.Log.Errorw("не удалось выпустить токены", "user_id", userID, "error", err)
		jsonDetail(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// HandleMe - GET /api/me/ : текущий пользователь с профилем и ролями.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		jsonDetail(w, "user not found", http.StatusNotFound)
		return
	}

	active, available, err := h.Roles.GetActive(userID)
	if err != nil {
		h.Log.Errorw("не удалось получить роли", "user_id", userID, "error", err)
		jsonDetail(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
		"profile": map[string]interface{}{
			"active_role": active,
			"roles":       available,
		},
	})
}
