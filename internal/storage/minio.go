package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/coursehub/coursehub-backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient wraps the two buckets of the pipeline: raw uploads land in
// uploadBucket via presigned PUT, the transcoder writes renditions to
// finalBucket.
type MinioClient struct {
	client       *minio.Client
	uploadBucket string
	finalBucket  string
}

func New(endpoint, accessKey, secretKey, uploadBucket, finalBucket string, useSSL bool) (*MinioClient, error) {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	for _, bucket := range []string{uploadBucket, finalBucket} {
		exists, err := minioClient.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := minioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
	}

	return &MinioClient{
		client:       minioClient,
		uploadBucket: uploadBucket,
		finalBucket:  finalBucket,
	}, nil
}

// PresignUpload returns a PUT URL the browser uploads the raw file to
// directly. Valid for one hour.
func (m *MinioClient) PresignUpload(ctx context.Context, objectKey, contentType string) (string, error) {
	start := time.Now()

	reqParams := make(url.Values)
	reqParams.Set("Content-Type", contentType)

	presigned, err := m.client.PresignHeader(ctx, "PUT", m.uploadBucket, objectKey, time.Hour, reqParams, nil)

	logger.LogStorageOperation(ctx, "presign_put", objectKey, time.Since(start), err)

	if err != nil {
		return "", fmt.Errorf("presign upload url failed: %w", err)
	}
	return presigned.String(), nil
}

// StatUpload returns the size of a raw uploaded object in bytes.
func (m *MinioClient) StatUpload(ctx context.Context, objectKey string) (int64, error) {
	start := time.Now()

	info, err := m.client.StatObject(ctx, m.uploadBucket, objectKey, minio.StatObjectOptions{})

	logger.LogStorageOperation(ctx, "stat", objectKey, time.Since(start), err)

	if err != nil {
		return 0, fmt.Errorf("stat object failed: %w", err)
	}
	return info.Size, nil
}

// RemoveUpload deletes the raw object for a video.
func (m *MinioClient) RemoveUpload(ctx context.Context, objectKey string) error {
	start := time.Now()

	err := m.client.RemoveObject(ctx, m.uploadBucket, objectKey, minio.RemoveObjectOptions{})

	logger.LogStorageOperation(ctx, "remove", objectKey, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("remove object failed: %w", err)
	}
	return nil
}

// RemoveRenditions deletes everything the transcoder produced under
// prefix (playlists, segments, per-resolution files).
func (m *MinioClient) RemoveRenditions(ctx context.Context, prefix string) error {
	start := time.Now()

	objects := m.client.ListObjects(ctx, m.finalBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var firstErr error
	for object := range objects {
		if object.Err != nil {
			firstErr = object.Err
			break
		}
		if err := m.client.RemoveObject(ctx, m.finalBucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			logger.Logger.Warn("Failed to remove rendition",
				"object_key", object.Key,
				"error", err.Error(),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	logger.LogStorageOperation(ctx, "remove_prefix", prefix, time.Since(start), firstErr)

	if firstErr != nil {
		return fmt.Errorf("remove renditions under %s: %w", prefix, firstErr)
	}
	return nil
}
