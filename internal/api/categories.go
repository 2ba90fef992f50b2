package api

import (
	"encoding/json"
	"net/http"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/go-chi/chi/v5"
)

func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category model.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if category.Name == "" {
		writeError(w, http.StatusBadRequest, "A category must have a name.")
		return
	}

	created, err := a.Categories.CreateCategory(r.Context(), &category)
	if err != nil {
		writeError(w, statusFromError(err), "Failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"data":   map[string]any{"category": created},
	})
}

func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.Categories.ListCategories(r.Context())
	if err != nil {
		writeError(w, statusFromError(err), "Failed to fetch categories")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(categories),
		"data":    map[string]any{"categories": categories},
	})
}

func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "category_id")
	category, err := a.Categories.GetCategoryByID(r.Context(), categoryID)
	if err != nil {
		writeError(w, statusFromError(err), "No category found with that ID!")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ImageURL    *string `json:"imageUrl"`
		Index       *int    `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ImageURL != nil {
		category.ImageURL = *req.ImageURL
	}
	if req.Index != nil {
		category.Index = *req.Index
	}

	if err := a.Categories.UpdateCategory(r.Context(), category); err != nil {
		writeError(w, statusFromError(err), "Failed to update category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"category": category},
	})
}

func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "category_id")
	if err := a.Categories.DeleteCategory(r.Context(), categoryID); err != nil {
		writeError(w, statusFromError(err), "Failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
