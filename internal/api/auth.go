package api

import (
	"encoding/json"
	"net/http"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/coursehub/coursehub-backend/pkg/utils"
)

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, err := a.Users.Register(r.Context(), req.Name, req.Email, req.Password, model.RoleUser)
	if err != nil {
		writeError(w, statusFromError(err), "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := a.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, statusFromError(err), "Invalid email or password")
		return
	}

	token, err := utils.GenToken(a.JWTSecret, user.ID, string(user.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		MaxAge:   3600, // 1 hour
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, user)
}

func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	// delete cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
