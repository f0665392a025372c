package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amnmlk2025/dunetube/internal/models"
)

func TestLessonListFilter(t *testing.T) {
	e := newTestEnv(t)
	owner, _ := e.createUser("filter-owner@example.com", models.RoleCreator)

	first := e.createCourse(owner.ID, "Course One")
	second := e.createCourse(owner.ID, "Course Two")
	e.createLesson(first.ID, 2, "Second Lesson")
	e.createLesson(first.ID, 1, "First Lesson")
	e.createLesson(second.ID, 1, "Other Course Lesson")

	rr := e.request("GET", fmt.Sprintf("/api/lessons/?course=%d", first.ID), nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var views []struct{ models.Lesson }
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	require.Len(t, views, 2)
	// Сортировка по position
	assert.Equal(t, "First Lesson", views[0].Title)
	assert.Equal(t, "Second Lesson", views[1].Title)

	rr = e.request("GET", "/api/lessons/?search=other", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Other Course Lesson", views[0].Title)
}

func TestLessonProgressFlow(t *testing.T) {
	e := newTestEnv(t)
	owner, _ := e.createUser("progress-owner@example.com", models.RoleCreator)
	_, token := e.createUser("progress-student@example.com", models.RoleStudent)

	course := e.createCourse(owner.ID, "Shield Fighting")
	lesson := e.createLesson(course.ID, 1, "Slow Blade")
	path := fmt.Sprintf("/api/lessons/%d/progress/", lesson.ID)

	// Первый GET создает запись с нулевой позицией
	rr := e.request("GET", path, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeJSON(t, rr)
	assert.EqualValues(t, 0, body["last_position"])

	// Число
	rr = e.request("PATCH", path, map[string]interface{}{"last_position": 42}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 42, decodeJSON(t, rr)["last_position"])

	rr = e.request("GET", path, nil, token)
	assert.EqualValues(t, 42, decodeJSON(t, rr)["last_position"])

	// Строка с числом тоже принимается
	rr = e.request("PATCH", path, map[string]interface{}{"last_position": "17"}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 17, decodeJSON(t, rr)["last_position"])

	// Отрицательное значение прижимается к нулю
	rr = e.request("PATCH", path, map[string]interface{}{"last_position": -5}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, decodeJSON(t, rr)["last_position"])
}

func TestLessonProgressValidation(t *testing.T) {
	e := newTestEnv(t)
	owner, _ := e.createUser("validation-owner@example.com", models.RoleCreator)
	_, token := e.createUser("validation-student@example.com", models.RoleStudent)

	course := e.createCourse(owner.ID, "Voice Control")
	lesson := e.createLesson(course.ID, 1, "Command Tone")
	path := fmt.Sprintf("/api/lessons/%d/progress/", lesson.ID)

	rr := e.request("PATCH", path, map[string]interface{}{}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "last_position is required", detail(t, rr))

	rr = e.request("PATCH", path, map[string]interface{}{"last_position": "abc"}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "last_position must be an integer", detail(t, rr))

	rr = e.request("PATCH", path, map[string]interface{}{"last_position": true}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "last_position must be an integer", detail(t, rr))

	// Прогресс по несуществующему уроку
	rr = e.request("GET", "/api/lessons/99999/progress/", nil, token)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "lesson not found", detail(t, rr))

	// Без входа прогресса нет
	rr = e.request("GET", path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLessonNotes(t *testing.T) {
	e := newTestEnv(t)
	owner, _ := e.createUser("notes-owner@example.com", models.RoleCreator)
	_, token := e.createUser("notes-user@example.com", models.RoleStudent)
	stranger, strangerToken := e.createUser("stranger@example.com", models.RoleStudent)

	course := e.createCourse(owner.ID, "Fremen Customs")
	lesson := e.createLesson(course.ID, 1, "Water Bond")
	path := fmt.Sprintf("/api/lessons/%d/notes/", lesson.ID)

	rr := e.request("POST", path, map[string]interface{}{"timestamp": 30}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "body is required", detail(t, rr))

	rr = e.request("POST", path, map[string]interface{}{"body": "remember the water bond", "timestamp": 30}, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var note struct {
		ID          uint   `json:"id"`
		Body        string `json:"body"`
		LessonTitle string `json:"lesson_title"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &note))
	assert.Equal(t, "Water Bond", note.LessonTitle)

	// Чужая заметка от другого пользователя
	require.NoError(t, e.db.Create(&models.LessonNote{
		UserID: stranger.ID, LessonID: lesson.ID, Body: "not yours",
	}).Error)

	// В списке только свои
	rr = e.request("GET", path, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var notes []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "remember the water bond", notes[0]["body"])

	detailPath := fmt.Sprintf("/api/lessons/%d/notes/%d", lesson.ID, note.ID)

	rr = e.request("PATCH", detailPath, map[string]string{"body": "updated"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	// Чужую заметку нельзя ни увидеть, ни изменить — 404
	rr = e.request("PATCH", detailPath, map[string]string{"body": "hijack"}, strangerToken)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "note not found", detail(t, rr))

	rr = e.request("DELETE", detailPath, nil, token)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = e.request("GET", path, nil, token)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	assert.Empty(t, notes)
}

func TestNotesCollection(t *testing.T) {
	e := newTestEnv(t)
	owner, _ := e.createUser("collection-owner@example.com", models.RoleCreator)
	_, token := e.createUser("collection-user@example.com", models.RoleStudent)

	first := e.createCourse(owner.ID, "Course A")
	second := e.createCourse(owner.ID, "Course B")
	lessonA := e.createLesson(first.ID, 1, "A1")
	lessonB := e.createLesson(second.ID, 1, "B1")

	rr := e.request("POST", "/api/notes/", map[string]interface{}{"body": "no lesson"}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "lesson is required", detail(t, rr))

	rr = e.request("POST", "/api/notes/", map[string]interface{}{"lesson": 99999, "body": "ghost"}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "lesson not found", detail(t, rr))

	rr = e.request("POST", "/api/notes/", map[string]interface{}{"lesson": lessonA.ID, "body": "note a"}, token)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = e.request("POST", "/api/notes/", map[string]interface{}{"lesson": lessonB.ID, "body": "note b"}, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = e.request("GET", "/api/notes/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var notes []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	assert.Len(t, notes, 2)

	// Фильтр по курсу идет через JOIN с уроками
	rr = e.request("GET", fmt.Sprintf("/api/notes/?course=%d", second.ID), nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "note b", notes[0]["body"])

	rr = e.request("GET", fmt.Sprintf("/api/notes/?lesson=%d", lessonA.ID), nil, token)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "note a", notes[0]["body"])
}
