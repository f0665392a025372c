package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Amnmlk2025/dunetube/internal/auth"
	"github.com/Amnmlk2025/dunetube/internal/database"
	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/models"
	"github.com/Amnmlk2025/dunetube/internal/roles"
)

const testPassword = "dunetube-demo"

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *mux.Router
	tokens *auth.TokenManager
	roles  *roles.Service
	h      *Handler
}

// newTestEnv поднимает хендлеры на sqlite и собирает роутер с теми же
// путями и middleware, что и боевой.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "api.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	tokens := auth.NewTokenManager("test-secret", time.Minute, time.Hour)
	roleSvc := roles.NewService(db, "")
	store := sessions.NewCookieStore([]byte("test-session-key"))
	oauthConfig := auth.InitGoogleOAuthConfig("", "", "")
	h := NewHandler(db, zap.NewNop().Sugar(), tokens, roleSvc, store, oauthConfig, t.TempDir())

	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)
	requireCreator := middleware.RequireRole(roleSvc, models.RoleCreator, models.RoleAdmin)
	creator := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(requireCreator(next))
	}

	r := mux.NewRouter()
	r.StrictSlash(true)
	r.HandleFunc("/healthz", h.HandleHealthz).Methods("GET")
	r.HandleFunc("/api/token/", h.HandleToken).Methods("POST")
	r.HandleFunc("/api/token/refresh/", h.HandleTokenRefresh).Methods("POST")
	r.HandleFunc("/api/me/", requireAuth(h.HandleMe)).Methods("GET")
	r.HandleFunc("/auth/roles/", requireAuth(h.HandleRoles)).Methods("GET")
	r.HandleFunc("/auth/roles/activate", requireAuth(h.HandleActivateRole)).Methods("POST")
	r.HandleFunc("/api/courses/", h.GetCourses).Methods("GET")
	r.HandleFunc("/api/courses/", creator(h.CreateCourse)).Methods("POST")
	r.HandleFunc("/api/courses/{id}", h.GetCourseByID).Methods("GET")
	r.HandleFunc("/api/courses/{id}", creator(h.UpdateCourse)).Methods("PUT", "PATCH")
	r.HandleFunc("/api/courses/{id}", creator(h.DeleteCourse)).Methods("DELETE")
	r.HandleFunc("/api/courses/{id}/lessons/", optionalAuth(h.GetCourseLessons)).Methods("GET")
	r.HandleFunc("/api/courses/{id}/reviews/", h.GetCourseReviews).Methods("GET")
	r.HandleFunc("/api/courses/{id}/reviews/", requireAuth(h.CreateCourseReview)).Methods("POST")
	r.HandleFunc("/api/lessons/", optionalAuth(h.GetLessons)).Methods("GET")
	r.HandleFunc("/api/lessons/{id}", optionalAuth(h.GetLessonByID)).Methods("GET")
	r.HandleFunc("/api/lessons/{id}/progress/", requireAuth(h.HandleLessonProgress)).Methods("GET", "PATCH")
	r.HandleFunc("/api/lessons/{id}/notes/", requireAuth(h.HandleLessonNotes)).Methods("GET", "POST")
	r.HandleFunc("/api/lessons/{id}/notes/{note_id}", requireAuth(h.HandleLessonNoteDetail)).Methods("PATCH", "DELETE")
	r.HandleFunc("/api/notes/", requireAuth(h.HandleNotes)).Methods("GET", "POST")
	r.HandleFunc("/api/notes/{id}", requireAuth(h.HandleNoteDetail)).Methods("GET", "PUT", "PATCH", "DELETE")
	r.HandleFunc("/api/wallet/transactions/", requireAuth(h.HandleWalletTransactions)).Methods("GET")
	r.HandleFunc("/api/wallet/invoices/", requireAuth(h.HandleWalletInvoices)).Methods("GET")

	return &testEnv{t: t, db: db, router: r, tokens: tokens, roles: roleSvc, h: h}
}

// createUser создает пользователя с паролем testPassword, выдает роли
// и возвращает access-токен.
func (e *testEnv) createUser(email string, userRoles ...string) (models.User, string) {
	e.t.Helper()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(e.t, err)

	user := models.User{Email: email, Name: email, PasswordHash: hash}
	require.NoError(e.t, e.db.Create(&user).Error)

	for _, role := range userRoles {
		require.NoError(e.t, e.roles.Assign(user.ID, role))
	}

	token, err := e.tokens.IssueAccess(user.ID)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) createCourse(ownerID uint, title string) models.Course {
	e.t.Helper()

	course := models.Course{Title: title, OwnerID: ownerID, PriceCurrency: "USD", Language: "en"}
	require.NoError(e.t, e.db.Create(&course).Error)
	return course
}

func (e *testEnv) createLesson(courseID uint, position int, title string) models.Lesson {
	e.t.Helper()

	lesson := models.Lesson{CourseID: courseID, Position: position, Title: title}
	require.NoError(e.t, e.db.Create(&lesson).Error)
	return lesson
}

func (e *testEnv) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func detail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeJSON(t, rr)["detail"].(string)
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)

	rr := e.request("GET", "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeJSON(t, rr)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "dunetube-api", body["service"])
}

func TestTokenLogin(t *testing.T) {
	e := newTestEnv(t)
	user, _ := e.createUser("login@example.com", models.RoleStudent)

	rr := e.request("POST", "/api/token/", map[string]string{
		"username": user.Email,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeJSON(t, rr)
	require.NotEmpty(t, body["access"])
	require.NotEmpty(t, body["refresh"])

	// Выданный access-токен действительно работает
	rr = e.request("GET", "/api/me/", nil, body["access"].(string))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTokenLoginRejected(t *testing.T) {
	e := newTestEnv(t)
	user, _ := e.createUser("reject@example.com")

	rr := e.request("POST", "/api/token/", map[string]string{
		"username": user.Email,
		"password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "no active account found with the given credentials", detail(t, rr))

	rr = e.request("POST", "/api/token/", map[string]string{
		"username": "nobody@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.request("POST", "/api/token/", map[string]string{"username": user.Email}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "username and password are required", detail(t, rr))
}

func TestTokenRefresh(t *testing.T) {
	e := newTestEnv(t)
	user, _ := e.createUser("refresh@example.com")

	pair, err := e.tokens.IssuePair(user.ID)
	require.NoError(t, err)

	rr := e.request("POST", "/api/token/refresh/", map[string]string{"refresh": pair.Refresh}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decodeJSON(t, rr)["access"])

	rr = e.request("POST", "/api/token/refresh/", map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "refresh is required", detail(t, rr))

	rr = e.request("POST", "/api/token/refresh/", map[string]string{"refresh": "garbage"}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	// Access-токен вместо refresh не принимается
	rr = e.request("POST", "/api/token/refresh/", map[string]string{"refresh": pair.Access}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	user, token := e.createUser("me@example.com", models.RoleStudent, models.RoleCreator)

	rr := e.request("GET", "/api/me/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeJSON(t, rr)
	assert.Equal(t, user.Email, body["email"])

	profile := body["profile"].(map[string]interface{})
	assert.Nil(t, profile["active_role"])
	assert.ElementsMatch(t, []interface{}{"creator", "student"}, profile["roles"])
}

func TestRolesRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	rr := e.request("GET", "/auth/roles/", nil, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "authentication credentials were not provided", detail(t, rr))

	rr = e.request("POST", "/auth/roles/activate", map[string]string{"role": "student"}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.request("GET", "/auth/roles/", nil, "bogus-token")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "token is invalid or expired", detail(t, rr))
}

// Полный сценарий работы с ролями: листинг, активация, отказ по
// невыданной роли, пустое тело.
func TestRolesScenario(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.createUser("roles@example.com", models.RoleStudent, models.RoleCreator)

	// До первой активации активная роль null, доступные — по алфавиту
	rr := e.request("GET", "/auth/roles/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	assert.Nil(t, body["active_role"])
	assert.Equal(t, []interface{}{"creator", "student"}, body["available_roles"])

	// Активация выданной роли
	rr = e.request("POST", "/auth/roles/activate", map[string]string{"role": "creator"}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "creator", decodeJSON(t, rr)["active_role"])

	rr = e.request("GET", "/auth/roles/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "creator", decodeJSON(t, rr)["active_role"])

	// Невыданная роль — 400, активная не меняется
	rr = e.request("POST", "/auth/roles/activate", map[string]string{"role": "admin"}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "role not assigned", detail(t, rr))

	rr = e.request("GET", "/auth/roles/", nil, token)
	assert.Equal(t, "creator", decodeJSON(t, rr)["active_role"])

	// Пустое тело и пустая роль — 400 role is required
	rr = e.request("POST", "/auth/roles/activate", nil, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "role is required", detail(t, rr))

	rr = e.request("POST", "/auth/roles/activate", map[string]string{"role": ""}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "role is required", detail(t, rr))
}

func TestWalletFixtures(t *testing.T) {
	e := newTestEnv(t)
	creator, token := e.createUser("wallet@example.com", models.RoleCreator)
	e.createCourse(creator.ID, "Sietch Economics")

	rr := e.request("GET", "/api/wallet/transactions/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	require.Contains(t, body, "balance")
	require.Contains(t, body, "transactions")

	rr = e.request("GET", "/api/wallet/invoices/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	invoices := decodeJSON(t, rr)["invoices"].([]interface{})
	assert.Len(t, invoices, 2)

	rr = e.request("GET", "/api/wallet/transactions/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
