package model

import "time"

// VideoProgress tracks a video asset through the upload and transcode pipeline.
type VideoProgress string

const (
	VideoQueued       VideoProgress = "queued"
	VideoInitializing VideoProgress = "initializing"
	VideoUploading    VideoProgress = "uploading"
	VideoProcessing   VideoProgress = "processing"
	VideoCompleted    VideoProgress = "completed"
	VideoFailed       VideoProgress = "failed"
)

// ValidFinalProgress reports whether p is a terminal state a transcode
// worker is allowed to report.
func ValidFinalProgress(p VideoProgress) bool {
	return p == VideoCompleted || p == VideoFailed
}

// VideoResolutions maps a rendition name (e.g. "playlist", "720p") to its URL.
// Stored as JSONB and set exactly once, at the final transition.
type VideoResolutions map[string]string

type Video struct {
	ID                      string           `json:"id"`
	ObjectKey               string           `json:"objectKey"`
	OwnerID                 string           `json:"owner"`
	Title                   string           `json:"title"`
	Description             string           `json:"description"`
	Progress                VideoProgress    `json:"progress"`
	OriginalFileSize        int64            `json:"originalFileSize"`
	EstimatedProcessingTime int64            `json:"estimatedProcessingTime,omitempty"` // seconds
	ErrorMessage            string           `json:"error,omitempty"`
	VideoResolutions        VideoResolutions `json:"videoResolutions,omitempty"`
	CreatedAt               time.Time        `json:"createdAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
}
