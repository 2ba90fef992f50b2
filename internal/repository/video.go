package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/coursehub/coursehub-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VideoRepository interface {
	CreateVideo(ctx context.Context, v *model.Video) (*model.Video, error)
	GetVideoByID(ctx context.Context, videoID string) (*model.Video, error)
	GetVideoByObjectKey(ctx context.Context, objectKey string) (*model.Video, error)
	UpdateVideo(ctx context.Context, v *model.Video) error
	GetVideosByOwner(ctx context.Context, ownerID string) ([]*model.Video, error)
	GetCompletedVideos(ctx context.Context) ([]*model.Video, error)
	DeleteVideo(ctx context.Context, videoID string) error
}

type videoRepo struct {
	db *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &videoRepo{db: pool}
}

const videoColumns = `id, object_key, owner_id, title, description, progress,
	original_file_size, estimated_processing_time, error_message,
	video_resolutions, created_at, updated_at`

func (r *videoRepo) CreateVideo(ctx context.Context, v *model.Video) (*model.Video, error) {
	start := time.Now()

	logger.Logger.Info("Creating video in database",
		"video_id", v.ID,
		"owner_id", v.OwnerID,
		"object_key", v.ObjectKey,
		"progress", string(v.Progress),
	)

	resolutions, err := json.Marshal(v.VideoResolutions)
	if err != nil {
		return nil, fmt.Errorf("marshal video resolutions: %w", err)
	}

	query := `INSERT INTO videos (id, object_key, owner_id, title, description, progress,
	          original_file_size, estimated_processing_time, error_message, video_resolutions,
	          created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.db.Exec(ctx, query, v.ID, v.ObjectKey, v.OwnerID, v.Title, v.Description,
		v.Progress, v.OriginalFileSize, v.EstimatedProcessingTime, v.ErrorMessage,
		resolutions, v.CreatedAt, v.UpdatedAt)

	logger.LogDatabaseOperation(ctx, "insert", "videos", time.Since(start), err)

	if err != nil {
		logger.Logger.Error("Failed to insert video",
			"video_id", v.ID,
			"owner_id", v.OwnerID,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("insert video failed: %w", err)
	}

	return v, nil
}

func (r *videoRepo) GetVideoByID(ctx context.Context, videoID string) (*model.Video, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM videos WHERE id=$1`, videoColumns)
	v, err := scanVideo(r.db.QueryRow(ctx, query, videoID))

	logger.LogDatabaseOperation(ctx, "select", "videos", time.Since(start), err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Logger.Warn("Video not found in database", "video_id", videoID)
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("get video failed: %w", err)
	}

	return v, nil
}

func (r *videoRepo) GetVideoByObjectKey(ctx context.Context, objectKey string) (*model.Video, error) {
	start := time.Now()

	logger.Logger.Info("Fetching video by object key",
		"object_key", objectKey,
	)

	query := fmt.Sprintf(`SELECT %s FROM videos WHERE object_key=$1`, videoColumns)
	v, err := scanVideo(r.db.QueryRow(ctx, query, objectKey))

	logger.LogDatabaseOperation(ctx, "select", "videos", time.Since(start), err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Logger.Warn("No video for object key", "object_key", objectKey)
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("get video by object key failed: %w", err)
	}

	return v, nil
}

func (r *videoRepo) UpdateVideo(ctx context.Context, v *model.Video) error {
	start := time.Now()

	resolutions, err := json.Marshal(v.VideoResolutions)
	if err != nil {
		return fmt.Errorf("marshal video resolutions: %w", err)
	}

	v.UpdatedAt = time.Now()
	query := `UPDATE videos SET progress=$1, estimated_processing_time=$2, error_message=$3,
	          video_resolutions=$4, updated_at=$5 WHERE id=$6`
	tag, err := r.db.Exec(ctx, query, v.Progress, v.EstimatedProcessingTime, v.ErrorMessage,
		resolutions, v.UpdatedAt, v.ID)

	logger.LogDatabaseOperation(ctx, "update", "videos", time.Since(start), err)

	if err != nil {
		logger.Logger.Error("Failed to update video",
			"video_id", v.ID,
			"progress", string(v.Progress),
			"error", err.Error(),
		)
		return fmt.Errorf("update video failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}

	logger.Logger.Info("Video updated",
		"video_id", v.ID,
		"progress", string(v.Progress),
	)

	return nil
}

func (r *videoRepo) GetVideosByOwner(ctx context.Context, ownerID string) ([]*model.Video, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM videos WHERE owner_id=$1 ORDER BY created_at DESC`, videoColumns)
	rows, err := r.db.Query(ctx, query, ownerID)

	logger.LogDatabaseOperation(ctx, "select", "videos", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("query videos failed: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

func (r *videoRepo) GetCompletedVideos(ctx context.Context) ([]*model.Video, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM videos WHERE progress=$1 ORDER BY created_at DESC`, videoColumns)
	rows, err := r.db.Query(ctx, query, model.VideoCompleted)

	logger.LogDatabaseOperation(ctx, "select", "videos", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("query completed videos failed: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

func (r *videoRepo) DeleteVideo(ctx context.Context, videoID string) error {
	start := time.Now()

	tag, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id=$1`, videoID)

	logger.LogDatabaseOperation(ctx, "delete", "videos", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("delete video failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func scanVideo(row pgx.Row) (*model.Video, error) {
	var v model.Video
	var resolutions []byte
	err := row.Scan(&v.ID, &v.ObjectKey, &v.OwnerID, &v.Title, &v.Description, &v.Progress,
		&v.OriginalFileSize, &v.EstimatedProcessingTime, &v.ErrorMessage,
		&resolutions, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(resolutions) > 0 {
		if err := json.Unmarshal(resolutions, &v.VideoResolutions); err != nil {
			return nil, fmt.Errorf("unmarshal video resolutions: %w", err)
		}
	}
	return &v, nil
}

func collectVideos(rows pgx.Rows) ([]*model.Video, error) {
	var videos []*model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
