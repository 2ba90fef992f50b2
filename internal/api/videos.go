package api

import (
	"encoding/json"
	"net/http"

	"github.com/coursehub/coursehub-backend/internal/service"
	"github.com/coursehub/coursehub-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
)

type initializeUploadRequest struct {
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
	Title       string `json:"title"`
	Description string `json:"description"`
	LessonID    string `json:"lessonId"`
}

// InitializeUpload issues a presigned upload URL and creates the asset
// record the pipeline webhooks will key off.
func (a *API) InitializeUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r.Context())
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "You must be logged in to upload a video.")
		return
	}

	var req initializeUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.FileName == "" || req.FileSize <= 0 || req.ContentType == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: fileName, fileSize, contentType, title.")
		return
	}

	result, err := a.Videos.InitializeUpload(r.Context(), service.InitializeUploadInput{
		OwnerID:     userID,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		ContentType: req.ContentType,
		Title:       req.Title,
		Description: req.Description,
		LessonID:    req.LessonID,
	})
	if err != nil {
		writeError(w, statusFromError(err), "Could not prepare the upload.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"videoId":   result.VideoID,
		"uploadUrl": result.UploadURL,
		"objectKey": result.ObjectKey,
	})
}

func (a *API) GetVideoByID(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "missing video_id")
		return
	}

	video, err := a.Videos.GetVideoByID(r.Context(), videoID)
	if err != nil {
		writeError(w, statusFromError(err), "No video found with that ID!")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"video": video},
	})
}

// GetVideoStatus exposes just the pipeline progress, for polling clients
// that have no websocket.
func (a *API) GetVideoStatus(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "missing video_id")
		return
	}

	video, err := a.Videos.GetVideoByID(r.Context(), videoID)
	if err != nil {
		writeError(w, statusFromError(err), "No video found with that ID!")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"progress": video.Progress,
	})
}

func (a *API) GetCompletedVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := a.Videos.GetCompletedVideos(r.Context())
	if err != nil {
		writeError(w, statusFromError(err), "Failed to fetch videos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(videos),
		"data":    map[string]any{"videos": videos},
	})
}

func (a *API) GetMyVideos(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r.Context())
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "user_id not found in context")
		return
	}

	videos, err := a.Videos.GetVideosByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, statusFromError(err), "Failed to fetch videos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(videos),
		"data":    map[string]any{"videos": videos},
	})
}

func (a *API) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "missing video_id")
		return
	}

	if err := a.Videos.RemoveVideo(r.Context(), videoID); err != nil {
		writeError(w, statusFromError(err), "Failed to delete video")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
