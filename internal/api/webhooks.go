package api

import (
	"encoding/json"
	"net/http"

	"github.com/coursehub/coursehub-backend/internal/metrics"
	"github.com/coursehub/coursehub-backend/internal/model"
)

type storageWebhookRequest struct {
	ObjectKey string `json:"objectKey"`
}

// HandleStorageWebhook is called by the object store (via its event hook)
// when a raw upload finishes. It moves the asset to "processing" and
// launches the transcode job.
func (a *API) HandleStorageWebhook(w http.ResponseWriter, r *http.Request) {
	var req storageWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.WebhooksTotal.WithLabelValues("storage", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.ObjectKey == "" {
		metrics.WebhooksTotal.WithLabelValues("storage", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Missing objectKey in request body.")
		return
	}

	if err := a.Transcoder.HandleUploadComplete(r.Context(), req.ObjectKey); err != nil {
		status := statusFromError(err)
		switch status {
		case http.StatusNotFound:
			metrics.WebhooksTotal.WithLabelValues("storage", "not_found").Inc()
			writeError(w, status, "Video record not found for the given key.")
		case http.StatusBadRequest:
			metrics.WebhooksTotal.WithLabelValues("storage", "bad_request").Inc()
			writeError(w, status, "Malformed object key.")
		default:
			metrics.WebhooksTotal.WithLabelValues("storage", "error").Inc()
			writeError(w, status, "Failed to start the processing job.")
		}
		return
	}

	metrics.WebhooksTotal.WithLabelValues("storage", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Processing job successfully triggered.",
	})
}

type transcodeWebhookRequest struct {
	Key              string                 `json:"key"`
	Progress         model.VideoProgress    `json:"progress"`
	VideoResolutions model.VideoResolutions `json:"videoResolutions"`
}

// HandleTranscodeWebhook is called by the transcoding worker with the
// final verdict for an asset, plus the rendition URLs on success.
func (a *API) HandleTranscodeWebhook(w http.ResponseWriter, r *http.Request) {
	var req transcodeWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.WebhooksTotal.WithLabelValues("transcoder", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Key == "" {
		metrics.WebhooksTotal.WithLabelValues("transcoder", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Missing key in request body.")
		return
	}

	if err := a.Transcoder.HandleTranscodeComplete(r.Context(), req.Key, req.Progress, req.VideoResolutions); err != nil {
		status := statusFromError(err)
		switch status {
		case http.StatusNotFound:
			metrics.WebhooksTotal.WithLabelValues("transcoder", "not_found").Inc()
			writeError(w, status, "Video not found!")
		case http.StatusBadRequest:
			metrics.WebhooksTotal.WithLabelValues("transcoder", "bad_request").Inc()
			writeError(w, status, "Progress must be completed or failed.")
		default:
			metrics.WebhooksTotal.WithLabelValues("transcoder", "error").Inc()
			writeError(w, status, "Failed to process transcode result.")
		}
		return
	}

	metrics.WebhooksTotal.WithLabelValues("transcoder", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Transcode result processed successfully.",
	})
}
