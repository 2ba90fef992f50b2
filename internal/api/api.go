package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coursehub/coursehub-backend/internal/relay"
	"github.com/coursehub/coursehub-backend/internal/repository"
	"github.com/coursehub/coursehub-backend/internal/service"
)

type API struct {
	Users      service.UserService
	Videos     service.VideoService
	Transcoder *service.TranscoderService
	Courses    repository.CourseRepository
	Categories repository.CategoryRepository
	Coaches    repository.CoachRepository
	Relay      *relay.Handler
	JWTSecret  []byte
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to do but note it.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}

// statusFromError maps domain errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrVideoNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCourseNotFound),
		errors.Is(err, repository.ErrLessonNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrCoachNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMalformedObjectKey),
		errors.Is(err, service.ErrInvalidProgress):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
