package api

import (
	"encoding/json"
	"net/http"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/go-chi/chi/v5"
)

func roleFromString(s string, fallback model.UserRole) model.UserRole {
	switch role := model.UserRole(s); role {
	case model.RoleUser, model.RoleCoach, model.RoleAdmin:
		return role
	}
	return fallback
}

func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.Users.ListUsers(r.Context())
	if err != nil {
		writeError(w, statusFromError(err), "Failed to fetch users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(users),
		"data":    map[string]any{"users": users},
	})
}

func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id")
		return
	}

	user, err := a.Users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, statusFromError(err), "No user found with that ID!")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"user": user},
	})
}

func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id")
		return
	}

	user, err := a.Users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, statusFromError(err), "No user found with that ID!")
		return
	}

	var req struct {
		Name              *string `json:"name"`
		Email             *string `json:"email"`
		Role              *string `json:"role"`
		ProfilePictureURL *string `json:"profilePictureUrl"`
		Access            *bool   `json:"access"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = roleFromString(*req.Role, user.Role)
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = *req.ProfilePictureURL
	}
	if req.Access != nil {
		user.Access = *req.Access
	}

	if err := a.Users.UpdateUser(r.Context(), user); err != nil {
		writeError(w, statusFromError(err), "Failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"user": user},
	})
}

func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user_id")
		return
	}

	if err := a.Users.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, statusFromError(err), "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
