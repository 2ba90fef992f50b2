package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/coursehub/coursehub-backend/internal/repository"
	"github.com/coursehub/coursehub-backend/pkg/logger"
	"github.com/google/uuid"
)

// UploadStorage is the slice of object storage the video service needs:
// presigned upload URLs on the way in, cleanup on deletion.
type UploadStorage interface {
	PresignUpload(ctx context.Context, objectKey, contentType string) (string, error)
	RemoveUpload(ctx context.Context, objectKey string) error
	RemoveRenditions(ctx context.Context, prefix string) error
}

type InitializeUploadInput struct {
	OwnerID     string
	FileName    string
	FileSize    int64
	ContentType string
	Title       string
	Description string
	LessonID    string
}

type InitializeUploadResult struct {
	VideoID   string `json:"videoId"`
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type VideoService interface {
	InitializeUpload(ctx context.Context, in InitializeUploadInput) (*InitializeUploadResult, error)
	GetVideoByID(ctx context.Context, videoID string) (*model.Video, error)
	GetVideosByOwner(ctx context.Context, ownerID string) ([]*model.Video, error)
	GetCompletedVideos(ctx context.Context) ([]*model.Video, error)
	RemoveVideo(ctx context.Context, videoID string) error
}

type videoService struct {
	videos  repository.VideoRepository
	courses repository.CourseRepository
	store   UploadStorage
}

func NewVideoService(videos repository.VideoRepository, courses repository.CourseRepository, store UploadStorage) VideoService {
	return &videoService{
		videos:  videos,
		courses: courses,
		store:   store,
	}
}

// InitializeUpload issues a presigned PUT URL and creates the asset record
// in state "initializing". The storage webhook later finds the record by
// the object key generated here.
func (s *videoService) InitializeUpload(ctx context.Context, in InitializeUploadInput) (*InitializeUploadResult, error) {
	start := time.Now()

	if in.OwnerID == "" {
		return nil, fmt.Errorf("invalid input: owner is required")
	}
	if in.FileName == "" || in.FileSize <= 0 || in.ContentType == "" || in.Title == "" {
		return nil, fmt.Errorf("invalid input: fileName, fileSize, contentType and title are required")
	}

	// Generated exactly once, here. The webhook handlers key everything
	// off this value.
	objectKey := fmt.Sprintf("uploads/videos/%d-%s",
		time.Now().UnixMilli(),
		strings.ReplaceAll(in.FileName, " ", "_"),
	)

	logger.Logger.Info("Initializing video upload",
		"owner_id", in.OwnerID,
		"object_key", objectKey,
		"file_size_bytes", in.FileSize,
	)

	uploadURL, err := s.store.PresignUpload(ctx, objectKey, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}

	now := time.Now()
	video := &model.Video{
		ID:               uuid.New().String(),
		ObjectKey:        objectKey,
		OwnerID:          in.OwnerID,
		Title:            in.Title,
		Description:      in.Description,
		Progress:         model.VideoInitializing,
		OriginalFileSize: in.FileSize,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := s.videos.CreateVideo(ctx, video); err != nil {
		return nil, fmt.Errorf("create video record: %w", err)
	}

	if in.LessonID != "" {
		lesson, err := s.courses.GetLessonByID(ctx, in.LessonID)
		if err != nil {
			// Roll back the asset so an orphaned record does not sit in
			// "initializing" forever.
			if delErr := s.videos.DeleteVideo(ctx, video.ID); delErr != nil {
				logger.Logger.Error("Failed to roll back video after missing lesson",
					"video_id", video.ID,
					"error", delErr.Error(),
				)
			}
			return nil, fmt.Errorf("link lesson: %w", err)
		}
		lesson.VideoID = video.ID
		if err := s.courses.UpdateLesson(ctx, lesson); err != nil {
			return nil, fmt.Errorf("link lesson: %w", err)
		}
	}

	logger.Logger.Info("Upload initialized",
		"video_id", video.ID,
		"object_key", objectKey,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &InitializeUploadResult{
		VideoID:   video.ID,
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

func (s *videoService) GetVideoByID(ctx context.Context, videoID string) (*model.Video, error) {
	if videoID == "" {
		return nil, fmt.Errorf("videoID cannot be empty")
	}
	return s.videos.GetVideoByID(ctx, videoID)
}

func (s *videoService) GetVideosByOwner(ctx context.Context, ownerID string) ([]*model.Video, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID cannot be empty")
	}
	return s.videos.GetVideosByOwner(ctx, ownerID)
}

func (s *videoService) GetCompletedVideos(ctx context.Context) ([]*model.Video, error) {
	return s.videos.GetCompletedVideos(ctx)
}

// RemoveVideo deletes the asset record plus its raw upload and transcoded
// renditions.
func (s *videoService) RemoveVideo(ctx context.Context, videoID string) error {
	video, err := s.videos.GetVideoByID(ctx, videoID)
	if err != nil {
		return err
	}

	if video.ObjectKey != "" {
		if err := s.store.RemoveUpload(ctx, video.ObjectKey); err != nil {
			logger.Logger.Warn("Failed to remove raw upload",
				"video_id", videoID,
				"object_key", video.ObjectKey,
				"error", err.Error(),
			)
		}

		// Renditions live under videos/<basename-without-extension>/.
		base := path.Base(video.ObjectKey)
		base = strings.TrimSuffix(base, path.Ext(base))
		if err := s.store.RemoveRenditions(ctx, "videos/"+base+"/"); err != nil {
			logger.Logger.Warn("Failed to remove renditions",
				"video_id", videoID,
				"error", err.Error(),
			)
		}
	}

	return s.videos.DeleteVideo(ctx, videoID)
}
