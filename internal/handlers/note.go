package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/models"
)

// noteView — заметка с названием урока, чтобы фронту не ходить за ним отдельно.
type noteView struct {
	models.LessonNote
	LessonTitle string `json:"lesson_title"`
}

func (h *Handler) noteViews(notes []models.LessonNote) []noteView {
	views := make([]noteView, 0, len(notes))
	for _, note := range notes {
		views = append(views, noteView{LessonNote: note, LessonTitle: note.Lesson.Title})
	}
	return views
}

// ==========================================
// 1. GET/POST /api/lessons/{id}/notes (нужен вход)
// ==========================================
// Только свои заметки, свежие сверху.
func (h *Handler) HandleLessonNotes(w http.ResponseWriter, r *http.Request) {
	lesson, ok := h.findLesson(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(r)

	if r.Method == http.MethodGet {
		var notes []models.LessonNote
		err := h.DB.Preload("Lesson").
			Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).
			Order("updated_at desc").
			Find(&notes).Error
		if err != nil {
			h.Log.Errorw("не удалось получить заметки", "user_id", userID, "lesson_id", lesson.ID, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, h.noteViews(notes))
		return
	}

	// POST
	var input struct {
		Body      string `json:"body"`
		Timestamp int    `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonDetail(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.Body == "" {
		jsonDetail(w, "body is required", http.StatusBadRequest)
		return
	}
	if input.Timestamp < 0 {
		input.Timestamp = 0
	}

	note := models.LessonNote{
		UserID:    userID,
		LessonID:  lesson.ID,
		Body:      input.Body,
		Timestamp: input.Timestamp,
	}
	if err := h.DB.Create(&note).Error; err != nil {
		h.Log.Errorw("не удалось создать заметку", "user_id", userID, "lesson_id", lesson.ID, "error", err)
		jsonDetail(w, "failed to create note", http.StatusInternalServerError)
		return
	}

	note.Lesson = *lesson
	writeJSON(w, http.StatusCreated, noteView{LessonNote: note, LessonTitle: lesson.Title})
}

// ==========================================
// 2. PATCH/DELETE /api/lessons/{id}/notes/{note_id}
// ==========================================
// Чужая заметка неотличима от несуществующей — 404 в обоих случаях.
func (h *Handler) HandleLessonNoteDetail(w http.ResponseWriter, r *http.Request) {
	lesson, ok := h.findLesson(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(r)

	noteID, err := strconv.Atoi(mux.Vars(r)["note_id"])
	if err != nil {
		jsonDetail(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	var note models.LessonNote
	err = h.DB.Preload("Lesson").
		Where("id = ? AND lesson_id = ? AND user_id = ?", noteID, lesson.ID, userID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "note not found", http.StatusNotFound)
		} else {
			h.Log.Errorw("ошибка БД при поиске заметки", "note_id", noteID, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if err := h.DB.Delete(&note).Error; err != nil {
			h.Log.Errorw("не удалось удалить заметку", "note_id", note.ID, "error", err)
			jsonDetail(w, "failed to delete note", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.updateNote(w, r, &note)
	}
}

// ==========================================
// 3. GET/POST /api/notes/ (коллекция, нужен вход)
// ==========================================
// Все заметки пользователя с фильтрами ?lesson= и ?course=.
func (h *Handler) HandleNotes(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	if r.Method == http.MethodGet {
		query := h.DB.Preload("Lesson").
			Joins("JOIN lessons ON lessons.id = lesson_notes.lesson_id").
			Where("lesson_notes.user_id = ?", userID)

		if lessonID := r.URL.Query().Get("lesson"); lessonID != "" {
			query = query.Where("lesson_notes.lesson_id = ?", lessonID)
		}
		if courseID := r.URL.Query().Get("course"); courseID != "" {
			query = query.Where("lessons.course_id = ?", courseID)
		}

		var notes []models.LessonNote
		if err := query.Order("lesson_notes.updated_at desc").Find(&notes).Error; err != nil {
			h.Log.Errorw("не удалось получить заметки", "user_id", userID, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, h.noteViews(notes))
		return
	}

	// POST: урок обязателен, проверяем что он существует
	var input struct {
		Lesson    uint   `json:"lesson"`
		Body      string `json:"body"`
		Timestamp int    `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonDetail(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if input.Lesson == 0 {
		jsonDetail(w, "lesson is required", http.StatusBadRequest)
		return
	}
	if input.Body == "" {
		jsonDetail(w, "body is required", http.StatusBadRequest)
		return
	}

	var lesson models.Lesson
	if err := h.DB.First(&lesson, input.Lesson).Error; err != nil {
		jsonDetail(w, "lesson not found", http.StatusBadRequest)
		return
	}

	if input.Timestamp < 0 {
		input.Timestamp = 0
	}
	note := models.LessonNote{
		UserID:    userID,
		LessonID:  lesson.ID,
		Body:      input.Body,
		Timestamp: input.Timestamp,
	}
	if err := h.DB.Create(&note).Error; err != nil {
		h.Log.Errorw("не удалось создать заметку", "user_id", userID, "error", err)
		jsonDetail(w, "failed to create note", http.StatusInternalServerError)
		return
	}

	note.Lesson = lesson
	writeJSON(w, http.StatusCreated, noteView{LessonNote: note, LessonTitle: lesson.Title})
}

// ==========================================
// 4. GET/PATCH/PUT/DELETE /api/notes/{id}
// ==========================================
func (h *Handler) HandleNoteDetail(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	noteID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		jsonDetail(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	var note models.LessonNote
	err = h.DB.Preload("Lesson").
		Where("id = ? AND user_id = ?", noteID, userID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonDetail(w, "note not found", http.StatusNotFound)
		} else {
			h.Log.Errorw("ошибка БД при поиске заметки", "note_id", noteID, "error", err)
			jsonDetail(w, "database error", http.StatusInternalServerError)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, noteView{LessonNote: note, LessonTitle: note.Lesson.Title})
	case http.MethodDelete:
		if err := h.DB.Delete(&note).Error; err != nil {
			h.Log.Errorw("не удалось удалить заметку", "note_id", note.ID, "error", err)
			jsonDetail(w, "failed to delete note", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.updateNote(w, r, &note)
	}
}

// updateNote — частичное обновление. Урок у заметки не меняется.
func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request, note *models.LessonNote) {
	var input struct {
		Body      *string `json:"body"`
		Timestamp *int    `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonDetail(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	if input.Body != nil {
		if *input.Body == "" {
			jsonDetail(w, "body is required", http.StatusBadRequest)
			return
		}
		note.Body = *input.Body
	}
	if input.Timestamp != nil {
		ts := *input.Timestamp
		if ts < 0 {
			ts = 0
		}
		note.Timestamp = ts
	}

	if err := h.DB.Save(note).Error; err != nil {
		h.Log.Errorw("не удалось обновить заметку", "note_id", note.ID, "error", err)
		jsonDetail(w, "failed to update note", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, noteView{LessonNote: *note, LessonTitle: note.Lesson.Title})
}
