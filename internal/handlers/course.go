package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/models"
)

// Поля, по которым каталог разрешает сортировку
var courseOrdering = map[string]string{
	"title":        "title",
	"created_at":   "created_at",
	"price_amount": "price_amount",
}

// courseSearch навешивает поиск по каталогу. LOWER+LIKE вместо ILIKE,
// чтобы один и тот же запрос работал и на Postgres, и на sqlite в тестах.
func courseSearch(db *gorm.DB, term string) *gorm.DB {
	if term == "" {
		return db
	}
	pattern := "%" + strings.ToLower(term) + "%"
	return db.Where(
		"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(publisher) LIKE ? OR LOWER(language) LIKE ? OR LOWER(CAST(tags AS TEXT)) LIKE ?",
		pattern, pattern, pattern, pattern, pattern,
	)
}

// ==========================================
// 1. GET /api/courses/ (Каталог, публичный)
// ==========================================
func (h *Handler) GetCourses(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r, courseOrdering, "title asc")

	courses := []models.Course{}
	query := courseSearch(h.DB.Model(&models.Course{}), params.Search)
	err := query.Order(params.OrderBy).
		Limit(params.Limit).Offset(params.Offset).
		Find(&courses).Error
	if err != nil {
		h.Log.Errorw("не удалось получить каталог", "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

// ==========================================
// 2. POST /api/courses/ (Создание, нужен вход)
// ==========================================
func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var input struct {
		Title         string          `json:"title"`
		Description   string          `json:"description"`
		PriceAmount   float64         `json:"price_amount"`
		PriceCurrency string          `json:"price_currency"`
		Language      string          `json:"language"`
		Tags          json.RawMessage `json:"tags"`
		ThumbnailURL  string          `json:"thumbnail_url"`
		Publisher     string          `json:"publisher"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonDetail(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		jsonDetail(w, "title is required", http.StatusBadRequest)
		return
	}

	course := models.Course{
		Title:         input.Title,
		Description:   input.Description,
		PriceAmount:   input.PriceAmount,
		PriceCurrency: input.PriceCurrency,
		Language:      input.Language,
		ThumbnailURL:  input.ThumbnailURL,
		Publisher:     input.Publisher,
		OwnerID:       userID,
	}
	if len(input.Tags) > 0 {
		course.Tags = datatypes.JSON(input.Tags)
	}

	if err := h.DB.Create(&course).Error; err != nil {
		h.Log.Errorw("не удалось создать курс", "error", err)
		jsonDetail(w, "failed to create course", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

// ==========================================
// 3. GET /api/courses/{id} (Детали)
// 4. PUT/PATCH /api/courses/{id} (Обновление)
// 5. DELETE /api/courses/{id} (Удаление)
// ==========================================
func (h *Handler) GetCourseByID(w http.ResponseWriter, r *http.Request) {
	course, ok := h.findCourse(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	course, ok := h.findCourse(w, r)
	if !ok {
		return
	}

	var input struct {
		Title         *string         `json:"title"`
		Description   *string         `json:"description"`
		PriceAmount   *float64        `json:"price_amount"`
		PriceCurrency *string         `json:"price_currency"`
		Language      *string         `json:"language"`
		Tags          json.RawMessage `json:"tags"`
		ThumbnailURL  *string         `json:"thumbnail_url"`
		Publisher     *string         `json:"publisher"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonDetail(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	// Частичное обновление: трогаем только присланные поля
	if input.Title != nil {
		if *input.Title == "" {
			jsonDetail(w, "title is required", http.StatusBadRequest)
			return
		}
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.PriceAmount != nil {
		course.PriceAmount = *input.PriceAmount
	}
	if input.PriceCurrency != nil {
		course.PriceCurrency = *input.PriceCurrency
	}
	if input.Language != nil {
		course.Language = *input.Language
	}
	if input.ThumbnailURL != nil {
		course.ThumbnailURL = *input.ThumbnailURL
	}
	if input.Publisher != nil {
		course.Publisher = *input.Publisher
	}
	if len(input.Tags) > 0 {
		course.Tags = datatypes.JSON(input.Tags)
	}

	if err := h.DB.Save(course).Error; err != nil {
		h.Log.Errorw("не удалось обновить курс", "course_id", course.ID, "error", err)
		jsonDetail(w, "failed to update course", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	course, ok := h.findCourse(w, r)
	if !ok {
		return
	}

	if err := h.DB.Delete(course).Error; err != nil {
		h.Log.Errorw("не удалось удалить курс", "course_id", course.ID, "error", err)
		jsonDetail(w, "failed to delete course", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ==========================================
// 6. GET /api/courses/{id}/lessons
// ==========================================
// Уроки курса по порядку. Для вошедшего пользователя в каждый урок
// встраивается его прогресс.
func (h *Handler) GetCourseLessons(w http.ResponseWriter, r *http.Request) {
	course, ok := h.findCourse(w, r)
	if !ok {
		return
	}

	var lessons []models.Lesson
	err := h.DB.Where("course_id = ?", course.ID).
		Order("position").Order("id").
		Find(&lessons).Error
	if err != nil {
		h.Log.Errorw("не удалось получить уроки курса", "course_id", course.ID, "error", err)
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

// findCourse достает курс из {id} или пишет 400/404 и возвращает false.
func (h *Handler) findCourse(w http.ResponseWriter, r *http.Request) (*models.Course, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		jsonDetail(w, "invalid course ID", http.StatusBadRequest)
		return nil, false
	}

	var course models.Course
	if err := h.DB.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "course not found", http.StatusNotFound)
		} else {
			h.Log.Errorw("ошибка БД при поиске курса", "course_id", id, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return &course, true
}
