package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/coursehub/coursehub-backend/internal/relay"
	"github.com/coursehub/coursehub-backend/internal/repository"
	"github.com/coursehub/coursehub-backend/internal/transcoder"
	"github.com/coursehub/coursehub-backend/pkg/logger"
)

var (
	ErrMalformedObjectKey = errors.New("malformed object key")
	ErrInvalidProgress    = errors.New("invalid final progress value")
)

// Notifier pushes a status message to a user, directly or via mailbox.
// *relay.Dispatcher is the production implementation.
type Notifier interface {
	DeliverOrQueue(ctx context.Context, userID string, msg relay.Message) error
}

// UploadStat reads the size of a raw uploaded object, used to estimate
// processing time. Optional.
type UploadStat interface {
	StatUpload(ctx context.Context, objectKey string) (int64, error)
}

// TranscoderService drives a video asset through the externally-triggered
// transitions of the pipeline: the storage webhook moves it to processing
// and launches the transcode job, the transcoder webhook moves it to its
// final state and notifies the owner.
type TranscoderService struct {
	videos             repository.VideoRepository
	trigger            transcoder.Trigger
	jobs               transcoder.JobCounter
	notifier           Notifier
	uploads            UploadStat
	notifyOnProcessing bool
}

func NewTranscoderService(
	videos repository.VideoRepository,
	trigger transcoder.Trigger,
	jobs transcoder.JobCounter,
	notifier Notifier,
	uploads UploadStat,
	notifyOnProcessing bool,
) *TranscoderService {
	return &TranscoderService{
		videos:             videos,
		trigger:            trigger,
		jobs:               jobs,
		notifier:           notifier,
		uploads:            uploads,
		notifyOnProcessing: notifyOnProcessing,
	}
}

// DecodeObjectKey undoes the encoding the storage webhook applies to the
// key: '+' stands for a space, the rest is percent-encoded.
func DecodeObjectKey(raw string) (string, error) {
	decoded, err := url.PathUnescape(strings.ReplaceAll(raw, "+", " "))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedObjectKey, raw)
	}
	return decoded, nil
}

// HandleUploadComplete is Transition A: the object store reports that the
// raw file has fully arrived. The asset record must already exist (created
// at upload initialization); an unknown key is a consistency error, never
// a reason to invent a record.
func (s *TranscoderService) HandleUploadComplete(ctx context.Context, rawObjectKey string) error {
	start := time.Now()

	objectKey, err := DecodeObjectKey(rawObjectKey)
	if err != nil {
		return err
	}

	logger.Logger.Info("Storage upload completed",
		"raw_key", rawObjectKey,
		"object_key", objectKey,
	)

	video, err := s.videos.GetVideoByObjectKey(ctx, objectKey)
	if err != nil {
		logger.LogWebhook(ctx, "storage", objectKey, time.Since(start), err)
		return err
	}

	video.Progress = model.VideoProcessing

	// Size-based processing estimate, best effort.
	if s.uploads != nil {
		if size, statErr := s.uploads.StatUpload(ctx, objectKey); statErr != nil {
			logger.Logger.Warn("Could not stat upload for time estimate",
				"object_key", objectKey,
				"error", statErr.Error(),
			)
		} else {
			video.EstimatedProcessingTime = estimateProcessingSeconds(size)
		}
	}

	if err := s.videos.UpdateVideo(ctx, video); err != nil {
		logger.LogWebhook(ctx, "storage", objectKey, time.Since(start), err)
		return fmt.Errorf("persist processing transition: %w", err)
	}

	if _, err := s.trigger.Trigger(ctx, objectKey); err != nil {
		// A job that never launched will never produce the final webhook,
		// so the asset is dead: mark it failed before surfacing the error.
		// Look the asset up again rather than reusing the stale copy.
		s.markTriggerFailure(ctx, objectKey)
		logger.LogWebhook(ctx, "storage", objectKey, time.Since(start), err)
		return fmt.Errorf("launch transcode job: %w", err)
	}

	if err := s.jobs.Increment(ctx); err != nil {
		logger.Logger.Warn("Job counter increment failed",
			"object_key", objectKey,
			"error", err.Error(),
		)
	}

	if s.notifyOnProcessing {
		msg := relay.NewProcessingMessage(video.ID, video.EstimatedProcessingTime)
		if err := s.notifier.DeliverOrQueue(ctx, video.OwnerID, msg); err != nil {
			// Best-effort push; the authoritative completion message
			// follows on the final transition.
			logger.Logger.Warn("Processing notification not delivered",
				"video_id", video.ID,
				"error", err.Error(),
			)
		}
	}

	logger.LogWebhook(ctx, "storage", objectKey, time.Since(start), nil)
	return nil
}

func (s *TranscoderService) markTriggerFailure(ctx context.Context, objectKey string) {
	video, err := s.videos.GetVideoByObjectKey(ctx, objectKey)
	if err != nil {
		logger.Logger.Error("Could not load video to record trigger failure",
			"object_key", objectKey,
			"error", err.Error(),
		)
		return
	}
	video.Progress = model.VideoFailed
	video.ErrorMessage = "A critical error occurred when starting the processing job."
	if err := s.videos.UpdateVideo(ctx, video); err != nil {
		logger.Logger.Error("Could not mark video as failed",
			"video_id", video.ID,
			"error", err.Error(),
		)
	}
}

// HandleTranscodeComplete is Transition B: the transcoding worker reports
// its final verdict. Exactly one notification goes out per call, routed by
// the asset's owner, and the active-job counter drops by one.
func (s *TranscoderService) HandleTranscodeComplete(ctx context.Context, objectKey string, progress model.VideoProgress, resolutions model.VideoResolutions) error {
	start := time.Now()

	if !model.ValidFinalProgress(progress) {
		return fmt.Errorf("%w: %q", ErrInvalidProgress, progress)
	}

	video, err := s.videos.GetVideoByObjectKey(ctx, objectKey)
	if err != nil {
		logger.LogWebhook(ctx, "transcoder", objectKey, time.Since(start), err)
		return err
	}

	video.Progress = progress
	if resolutions != nil {
		video.VideoResolutions = resolutions
	}
	if err := s.videos.UpdateVideo(ctx, video); err != nil {
		logger.LogWebhook(ctx, "transcoder", objectKey, time.Since(start), err)
		return fmt.Errorf("persist final transition: %w", err)
	}

	var msg relay.Message
	if progress == model.VideoCompleted {
		msg = relay.NewCompletedMessage(video.ID, video.VideoResolutions)
	} else {
		msg = relay.NewFailedMessage(video.ID)
	}

	// A notification that cannot be delivered or queued is data loss;
	// the webhook caller gets the failure and may retry.
	if err := s.notifier.DeliverOrQueue(ctx, video.OwnerID, msg); err != nil {
		logger.LogWebhook(ctx, "transcoder", objectKey, time.Since(start), err)
		return err
	}

	if err := s.jobs.Decrement(ctx); err != nil {
		logger.Logger.Warn("Job counter decrement failed",
			"object_key", objectKey,
			"error", err.Error(),
		)
	}

	logger.LogWebhook(ctx, "transcoder", objectKey, time.Since(start), nil)
	return nil
}

// estimateProcessingSeconds derives a rough transcode estimate from the
// raw file size, assuming ~2 MiB/s of pipeline throughput.
func estimateProcessingSeconds(sizeBytes int64) int64 {
	const bytesPerSecond = 2 << 20
	seconds := sizeBytes / bytesPerSecond
	if seconds < 30 {
		return 30
	}
	return seconds
}
