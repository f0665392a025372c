package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/models"
)

const maxUploadSize = 512 << 20 // 512 MB

// ownCourse — курс по ID, но только если он принадлежит вызывающему.
func (s *Service) ownCourse(userID, courseID uint) (*models.Course, error) {
	var course models.Course
	err := s.DB.Where("id = ? AND owner_id = ?", courseID, userID).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ==========================================
// 1. GET /api/studio/lessons/?course=ID
// ==========================================
func (s *Service) GetLessons(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	courseParam := r.URL.Query().Get("course")
	if courseParam == "" {
		jsonDetail(w, "course is required", http.StatusBadRequest)
		return
	}
	courseID, err := strconv.Atoi(courseParam)
	if err != nil {
		jsonDetail(w, "invalid course ID", http.StatusBadRequest)
		return
	}

	if _, err := s.ownCourse(userID, uint(courseID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "you can only manage your own courses", http.StatusBadRequest)
		} else {
			s.Log.Errorw("ошибка БД при проверке владельца курса", "course_id", courseID, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return
	}

	lessons := []models.Lesson{}
	if err := s.DB.Where("course_id = ?", courseID).Order("position, id").Find(&lessons).Error; err != nil {
		s.Log.Errorw("не удалось получить уроки студии", "course_id", courseID, "error", err)
		jsonDetail(w, "database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lessons)
}

// ==========================================
// 2. POST /api/studio/lessons/
// ==========================================
func (s *Service) CreateLesson(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var input struct {
		CourseID        uint   `json:"course"`
		Title           string `json:"title"`
		Description     string `json:"description"`
		Position        int    `json:"position"`
		VideoURL        string `json:"video_url"`
		DurationSeconds int    `json:"duration_seconds"`
		IsFreePreview   bool   `json:"is_free_preview"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonDetail(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.CourseID == 0 {
		jsonDetail(w, "course is required", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		jsonDetail(w, "title is required", http.StatusBadRequest)
		return
	}

	if _, err := s.ownCourse(userID, input.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "you can only manage your own courses", http.StatusBadRequest)
		} else {
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return
	}

	// Позиция не указана — ставим урок в конец курса.
	if input.Position == 0 {
		var maxPosition int
		s.DB.Model(&models.Lesson{}).
			Where("course_id = ?", input.CourseID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition)
		input.Position = maxPosition + 1
	}

	lesson := models.Lesson{
		CourseID:        input.CourseID,
		Title:           input.Title,
		Description:     input.Description,
		Position:        input.Position,
		VideoURL:        input.VideoURL,
		DurationSeconds: input.DurationSeconds,
		IsFreePreview:   input.IsFreePreview,
	}
	if err := s.DB.Create(&lesson).Error; err != nil {
		s.Log.Errorw("не удалось создать урок", "course_id", input.CourseID, "error", err)
		jsonDetail(w, "failed to create lesson", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, lesson)
}

// ==========================================
// 3. GET/PUT/PATCH/DELETE /api/studio/lessons/{id}
// ==========================================
func (s *Service) HandleLessonByID(w http.ResponseWriter, r *http.Request) {
	lesson, ok := s.findOwnLesson(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, lesson)
	case http.MethodDelete:
		if err := s.DB.Delete(lesson).Error; err != nil {
			s.Log.Errorw("не удалось удалить урок", "lesson_id", lesson.ID, "error", err)
			jsonDetail(w, "failed to delete lesson", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.updateLesson(w, r, lesson)
	}
}

func (s *Service) updateLesson(w http.ResponseWriter, r *http.Request, lesson *models.Lesson) {
	var input struct {
		Title           *string `json:"title"`
		Description     *string `json:"description"`
		Position        *int    `json:"position"`
		VideoURL        *string `json:"video_url"`
		DurationSeconds *int    `json:"duration_seconds"`
		IsFreePreview   *bool   `json:"is_free_preview"`
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
		lesson.Title = *input.Title
	}
	if input.Description != nil {
		lesson.Description = *input.Description
	}
	if input.Position != nil {
		lesson.Position = *input.Position
	}
	if input.VideoURL != nil {
		lesson.VideoURL = *input.VideoURL
	}
	if input.DurationSeconds != nil {
		lesson.DurationSeconds = *input.DurationSeconds
	}
	if input.IsFreePreview != nil {
		lesson.IsFreePreview = *input.IsFreePreview
	}

	if err := s.DB.Save(lesson).Error; err != nil {
		s.Log.Errorw("не удалось обновить урок", "lesson_id", lesson.ID, "error", err)
		jsonDetail(w, "failed to update lesson", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lesson)
}

// ==========================================
// 4. POST /api/studio/lessons/{id}/upload
// ==========================================
// Видео сохраняем под MediaRoot и прописываем путь в video_url.
func (s *Service) UploadLessonVideo(w http.ResponseWriter, r *http.Request) {
	lesson, ok := s.findOwnLesson(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonDetail(w, "file is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonDetail(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	dir := filepath.Join(s.MediaRoot, "videos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.Log.Errorw("не удалось создать каталог для видео", "dir", dir, "error", err)
		jsonDetail(w, "failed to store file", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("lesson-%d-%d%s", lesson.ID, time.Now().UnixNano(), filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		s.Log.Errorw("не удалось создать файл видео", "name", name, "error", err)
		jsonDetail(w, "failed to store file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.Log.Errorw("не удалось записать файл видео", "name", name, "error", err)
		jsonDetail(w, "failed to store file", http.StatusInternalServerError)
		return
	}

	lesson.VideoURL = "/media/videos/" + name
	if err := s.DB.Model(lesson).Update("video_url", lesson.VideoURL).Error; err != nil {
		s.Log.Errorw("не удалось обновить video_url", "lesson_id", lesson.ID, "error", err)
		jsonDetail(w, "failed to update lesson", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lesson)
}

// findOwnLesson — урок по ID из пути плюс проверка, что его курс
// принадлежит вызывающему. Пишет ответ сам при любой ошибке.
func (s *Service) findOwnLesson(w http.ResponseWriter, r *http.Request) (*models.Lesson, bool) {
	userID, _ := middleware.UserID(r)

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		jsonDetail(w, "invalid lesson ID", http.StatusBadRequest)
		return nil, false
	}

	var lesson models.Lesson
	if err := s.DB.First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "lesson not found", http.StatusNotFound)
		} else {
			s.Log.Errorw("ошибка БД при поиске урока", "lesson_id", id, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return nil, false
	}

	if _, err := s.ownCourse(userID, lesson.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "you can only manage your own courses", http.StatusBadRequest)
		} else {
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return nil, false
	}

	return &lesson, true
}
