package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/models"
)

// ==========================================
// 1. GET /api/courses/{id}/reviews (публичный)
// ==========================================
func (h *Handler) GetCourseReviews(w http.ResponseWriter, r *http.Request) {
	course, ok := h.findCourse(w, r)
	if !ok {
		return
	}

	reviews := []models.Review{}
	err := h.DB.Preload("User").
		Where("course_id = ?", course.ID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		h.Log.Errorw("не удалось получить отзывы", "course_id", course.ID, "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

// ==========================================
// 2. POST /api/courses/{id}/reviews (нужен вход)
// ==========================================
// Один отзыв на курс: повтор ловим на уникальном индексе, а не
// предварительным SELECT-ом.
func (h *Handler) CreateCourseReview(w http.ResponseWriter, r *http.Request) {
	course, ok := h.findCourse(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(r)

	var input struct {
		Rating int    `json:"rating"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonDetail(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		jsonDetail(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	review := models.Review{
		UserID:   userID,
		CourseID: course.ID,
		Rating:   input.Rating,
		Text:     input.Text,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			jsonDetail(w, "you have already reviewed this course", http.StatusBadRequest)
			return
		}
		h.Log.Errorw("не удалось создать отзыв", "course_id", course.ID, "user_id", userID, "error", err)
		jsonDetail(w, "failed to create review", http.StatusInternalServerError)
		return
	}

	h.DB.Preload("User").First(&review, review.ID)
	writeJSON(w, http.StatusCreated, review)
}

// isUniqueViolation — запасная проверка для драйверов, которые не
// транслируют нарушение уникальности в gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
