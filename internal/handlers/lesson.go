package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/models"
)

var lessonOrdering = map[string]string{
	"position":   "position",
	"created_at": "created_at",
}

// progressView — прогресс в том виде, как его ждет плеер:
// updated_at == null, пока записи еще нет.
type progressView struct {
	LastPosition int        `json:"last_position"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// lessonView — урок с встроенным прогрессом текущего пользователя.
type lessonView struct {
	models.Lesson
	Progress progressView `json:"progress"`
}

// lessonViews навешивает прогресс пользователя на список уроков одним
// запросом. Для анонима прогресс нулевой.
func (h *Handler) lessonViews(lessons []models.Lesson, userID uint) ([]lessonView, error) {
	views := make([]lessonView, 0, len(lessons))

	progressByLesson := map[uint]models.LessonProgress{}
	if userID != 0 && len(lessons) > 0 {
		ids := make([]uint, 0, len(lessons))
		for _, l := range lessons {
			ids = append(ids, l.ID)
		}

		var rows []models.LessonProgress
		err := h.DB.Where("user_id = ? AND lesson_id IN ?", userID, ids).Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			progressByLesson[row.LessonID] = row
		}
	}

	for _, lesson := range lessons {
		view := lessonView{Lesson: lesson}
		if row, ok := progressByLesson[lesson.ID]; ok {
			updatedAt := row.UpdatedAt
			view.Progress = progressView{LastPosition: row.LastPosition, UpdatedAt: &updatedAt}
		}
		views = append(views, view)
	}
	return views, nil
}

// ==========================================
// 1. GET /api/lessons/ (Список, публичный)
// ==========================================
// Фильтр ?course=, поиск по названию и описанию, сортировка по
// position/created_at. Уроки read-only: менять их можно только в студии.
func (h *Handler) GetLessons(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r, lessonOrdering, "position asc")

	query := h.DB.Model(&models.Lesson{})
	if courseID := r.URL.Query().Get("course"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var lessons []models.Lesson
	err := query.Order(params.OrderBy).Order("id").
		Limit(params.Limit).Offset(params.Offset).
		Find(&lessons).Error
	if err != nil {
		h.Log.Errorw("не удалось получить уроки", "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	userID, _ := middleware.UserID(r)
	views, err := h.lessonViews(lessons, userID)
	if err != nil {
		h.Log.Errorw("не удалось получить прогресс", "user_id", userID, "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// ==========================================
// 2. GET /api/lessons/{id}
// ==========================================
func (h *Handler) GetLessonByID(w http.ResponseWriter, r *http.Request) {
	lesson, ok := h.findLesson(w, r)
	if !ok {
		return
	}

	userID, _ := middleware.UserID(r)
	views, err := h.lessonViews([]models.Lesson{*lesson}, userID)
	if err != nil {
		h.Log.Errorw("не удалось получить прогресс", "user_id", userID, "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, views[0])
}

// ==========================================
// 3. GET/PATCH /api/lessons/{id}/progress (нужен вход)
// ==========================================
func (h *Handler) HandleLessonProgress(w http.ResponseWriter, r *http.Request) {
	lesson, ok := h.findLesson(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(r)

	progress, err := h.ensureProgress(userID, lesson.ID)
	if err != nil {
		h.Log.Errorw("не удалось создать запись прогресса", "user_id", userID, "lesson_id", lesson.ID, "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	if r.Method == http.MethodGet {
		updatedAt := progress.UpdatedAt
		writeJSON(w, http.StatusOK, progressView{LastPosition: progress.LastPosition, UpdatedAt: &updatedAt})
		return
	}

	// PATCH: last_position обязателен, принимаем число или строку с числом
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	raw, present := body["last_position"]
	if !present || raw == nil {
		jsonDetail(w, "last_position is required", http.StatusBadRequest)
		return
	}

	var position int
	switch v := raw.(type) {
	case float64:
		position = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			jsonDetail(w, "last_position must be an integer", http.StatusBadRequest)
			return
		}
		position = parsed
	default:
		jsonDetail(w, "last_position must be an integer", http.StatusBadRequest)
		return
	}
	if position < 0 {
		position = 0
	}

	err = h.DB.Model(&models.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).
		Updates(map[string]interface{}{
			"last_position": position,
			"updated_at":    time.Now(),
		}).Error
	if err != nil {
		h.Log.Errorw("не удалось обновить прогресс", "user_id", userID, "lesson_id", lesson.ID, "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, progressView{LastPosition: position, UpdatedAt: &now})
}

// ensureProgress — get-or-create записи прогресса через upsert по
// уникальной паре (user, lesson): два одновременных первых запроса
// не создадут дубликат.
func (h *Handler) ensureProgress(userID, lessonID uint) (*models.LessonProgress, error) {
	row := models.LessonProgress{UserID: userID, LessonID: lessonID}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var progress models.LessonProgress
	err = h.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// findLesson достает урок из {id} или пишет 400/404 и возвращает false.
func (h *Handler) findLesson(w http.ResponseWriter, r *http.Request) (*models.Lesson, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		jsonDetail(w, "invalid lesson ID", http.StatusBadRequest)
		return nil, false
	}

	var lesson models.Lesson
	if err := h.DB.First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "lesson not found", http.StatusNotFound)
		} else {
			h.Log.Errorw("ошибка БД при поиске урока", "lesson_id", id, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return &lesson, true
}
