package api

import (
	"encoding/json"
	"net/http"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/go-chi/chi/v5"
)

func (a *API) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var course model.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if course.Title == "" || course.CoachID == "" || course.CategoryID == "" {
		writeError(w, http.StatusBadRequest, "title, coachId and categoryId are required")
		return
	}

	created, err := a.Courses.CreateCourse(r.Context(), &course)
	if err != nil {
		writeError(w, statusFromError(err), "Failed to create course")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"data":   map[string]any{"course": created},
	})
}

func (a *API) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "course_id")
	course, err := a.Courses.GetCourseByID(r.Context(), courseID)
	if err != nil {
		writeError(w, statusFromError(err), "No course found with that ID!")
		return
	}

	lessons, err := a.Courses.ListLessonsByCourse(r.Context(), courseID)
	if err != nil {
		writeError(w, statusFromError(err), "Failed to fetch lessons")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"course":  course,
			"lessons": lessons,
		},
	})
}

func (a *API) ListCourses(w http.ResponseWriter, r *http.Request) {
	var (
		courses []*model.Course
		err     error
	)
	if coachID := r.URL.Query().Get("coachId"); coachID != "" {
		courses, err = a.Courses.ListCoursesByCoach(r.Context(), coachID)
	} else {
		courses, err = a.Courses.ListCourses(r.Context())
	}
	if err != nil {
		writeError(w, statusFromError(err), "Failed to fetch courses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(courses),
		"data":    map[string]any{"courses": courses},
	})
}

func (a *API) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "course_id")
	course, err := a.Courses.GetCourseByID(r.Context(), courseID)
	if err != nil {
		writeError(w, statusFromError(err), "No course found with that ID!")
		return
	}

	var req struct {
		Title        *string  `json:"title"`
		Description  *string  `json:"description"`
		Price        *float64 `json:"price"`
		CategoryID   *string  `json:"categoryId"`
		ThumbnailURL *string  `json:"thumbnailUrl"`
		Status       *string  `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.CategoryID != nil {
		course.CategoryID = *req.CategoryID
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Status != nil {
		switch status := model.CourseStatus(*req.Status); status {
		case model.CourseDraft, model.CoursePublished:
			course.Status = status
		default:
			writeError(w, http.StatusBadRequest, "status must be Draft or Published")
			return
		}
	}

	if err := a.Courses.UpdateCourse(r.Context(), course); err != nil {
		writeError(w, statusFromError(err), "Failed to update course")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"course": course},
	})
}

func (a *API) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "course_id")
	if err := a.Courses.DeleteCourse(r.Context(), courseID); err != nil {
		writeError(w, statusFromError(err), "Failed to delete course")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var lesson model.Lesson
	if err := json.NewDecoder(r.Body).Decode(&lesson); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if lesson.CourseID == "" {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	if _, err := a.Courses.GetCourseByID(r.Context(), lesson.CourseID); err != nil {
		writeError(w, statusFromError(err), "No course found with that ID!")
		return
	}

	created, err := a.Courses.CreateLesson(r.Context(), &lesson)
	if err != nil {
		writeError(w, statusFromError(err), "Failed to create lesson")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"data":   map[string]any{"lesson": created},
	})
}

func (a *API) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lesson_id")
	lesson, err := a.Courses.GetLessonByID(r.Context(), lessonID)
	if err != nil {
		writeError(w, statusFromError(err), "No lesson found with that ID!")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		VideoID     *string `json:"videoId"`
		Position    *int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = *req.Description
	}
	if req.VideoID != nil {
		lesson.VideoID = *req.VideoID
	}
	if req.Position != nil {
		lesson.Position = *req.Position
	}

	if err := a.Courses.UpdateLesson(r.Context(), lesson); err != nil {
		writeError(w, statusFromError(err), "Failed to update lesson")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"lesson": lesson},
	})
}

func (a *API) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lesson_id")
	if err := a.Courses.DeleteLesson(r.Context(), lessonID); err != nil {
		writeError(w, statusFromError(err), "Failed to delete lesson")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
