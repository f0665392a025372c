package studio

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

var studioCourseOrdering = map[string]string{
	"updated_at": "updated_at",
	"created_at": "created_at",
	"title":      "title",
}

// parseOrdering — "-field" в query превращаем в "field desc",
// всё вне allow-list заменяем дефолтом.
func parseOrdering(r *http.Request, allowList map[string]string, fallback string) string {
	ordering := r.URL.Query().Get("ordering")
	if ordering == "" {
		return fallback
	}
	direction := "asc"
	field := ordering
	if strings.HasPrefix(ordering, "-") {
		direction = "desc"
		field = ordering[1:]
	}
	column, ok := allowList[field]
	if !ok {
		return fallback
	}
	return column + " " + direction
}

// ==========================================
// 1. GET /api/studio/courses/ (только свои)
// ==========================================
func (s *Service) GetCourses(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	orderBy := parseOrdering(r, studioCourseOrdering, "updated_at desc")

	query := s.DB.Where("owner_id = ?", userID)
	if term := strings.TrimSpace(r.URL.Query().Get("search")); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(language) LIKE ? OR LOWER(publisher) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	courses := []models.Course{}
	if err := query.Order(orderBy).Find(&courses).Error; err != nil {
		s.Log.Errorw("не удалось получить курсы студии", "user_id", userID, "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

// ==========================================
// 2. POST /api/studio/courses/
// ==========================================
func (s *Service) CreateCourse(w http.ResponseWriter, r *http.Request) {
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

	if err := s.DB.Create(&course).Error; err != nil {
		s.Log.Errorw("не удалось создать курс в студии", "user_id", userID, "error", err)
		jsonDetail(w, "failed to create course", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

// ==========================================
// 3. GET/PUT/PATCH/DELETE /api/studio/courses/{id}
// ==========================================
// Чужой курс выглядит как несуществующий — 404.
func (s *Service) HandleCourseByID(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		jsonDetail(w, "invalid course ID", http.StatusBadRequest)
		return
	}

	var course models.Course
	err = s.DB.Where("id = ? AND owner_id = ?", id, userID).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "course not found", http.StatusNotFound)
		} else {
			s.Log.Errorw("ошибка БД при поиске курса студии", "course_id", id, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, course)
	case http.MethodDelete:
		if err := s.DB.Delete(&course).Error; err != nil {
			s.Log.Errorw("не удалось удалить курс студии", "course_id", course.ID, "error", err)
			jsonDetail(w, "failed to delete course", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.updateCourse(w, r, &course)
	}
}

func (s *Service) updateCourse(w http.ResponseWriter, r *http.Request, course *models.Course) {
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

	if err := s.DB.Save(course).Error; err != nil {
		s.Log.Errorw("не удалось обновить курс студии", "course_id", course.ID, "error", err)
		jsonDetail(w, "failed to update course", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, course)
}
