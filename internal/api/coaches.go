package api

import (
	"encoding/json"
	"net/http"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/go-chi/chi/v5"
)

func (a *API) CreateCoachProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.CoachProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if profile.UserID == "" || len(profile.Categories) == 0 {
		writeError(w, http.StatusBadRequest, "userId and at least one category are required")
		return
	}

	if _, err := a.Users.GetUser(r.Context(), profile.UserID); err != nil {
		writeError(w, statusFromError(err), "No user found with that ID!")
		return
	}

	created, err := a.Coaches.CreateProfile(r.Context(), &profile)
	if err != nil {
		writeError(w, statusFromError(err), "Failed to create coach profile")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"data":   map[string]any{"coach": created},
	})
}

func (a *API) GetCoachProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	profile, err := a.Coaches.GetProfileByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, statusFromError(err), "No coach profile found for that user!")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"coach": profile},
	})
}

func (a *API) ListCoachProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.Coaches.ListProfiles(r.Context())
	if err != nil {
		writeError(w, statusFromError(err), "Failed to fetch coach profiles")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(profiles),
		"data":    map[string]any{"coaches": profiles},
	})
}

func (a *API) UpdateCoachProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	profile, err := a.Coaches.GetProfileByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, statusFromError(err), "No coach profile found for that user!")
		return
	}

	var req struct {
		Bio           *string   `json:"bio"`
		Categories    *[]string `json:"categories"`
		IsBestseller  *bool     `json:"isBestseller"`
		IntroVideoURL *string   `json:"introVideoUrl"`
		Index         *int      `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Categories != nil {
		profile.Categories = *req.Categories
	}
	if req.IsBestseller != nil {
		profile.IsBestseller = *req.IsBestseller
	}
	if req.IntroVideoURL != nil {
		profile.IntroVideoURL = *req.IntroVideoURL
	}
	if req.Index != nil {
		profile.Index = *req.Index
	}

	if err := a.Coaches.UpdateProfile(r.Context(), profile); err != nil {
		writeError(w, statusFromError(err), "Failed to update coach profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"coach": profile},
	})
}

func (a *API) DeleteCoachProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	profile, err := a.Coaches.GetProfileByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, statusFromError(err), "No coach profile found for that user!")
		return
	}

	if err := a.Coaches.DeleteProfile(r.Context(), profile.ID); err != nil {
		writeError(w, statusFromError(err), "Failed to delete coach profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
