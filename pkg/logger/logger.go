package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
)

var Logger *slog.Logger

func init() {
	// Configure structured logging
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	// Use JSON handler for production-ready structured logs
	handler := slog.NewJSONHandler(os.Stdout, opts)
	Logger = slog.New(handler)

	// Set as default logger
	slog.SetDefault(Logger)
}

// WithContext adds request context information to logs
func WithContext(ctx context.Context) *slog.Logger {
	if reqID := ctx.Value("request_id"); reqID != nil {
		return Logger.With("request_id", reqID)
	}
	return Logger
}

// Service-specific logging helpers

func LogDatabaseOperation(ctx context.Context, operation, table string, duration time.Duration, err error) {
	logger := WithContext(ctx).With(
		"service", "database",
		"operation", operation,
		"table", table,
		"duration_ms", duration.Milliseconds(),
	)

	if err != nil {
		logger.Error("Database operation failed",
			"error", err.Error(),
		)
	} else {
		logger.Debug("Database operation completed successfully")
	}
}

func LogStorageOperation(ctx context.Context, operation, objectKey string, duration time.Duration, err error) {
	logger := WithContext(ctx).With(
		"service", "storage",
		"operation", operation,
		"object_key", objectKey,
		"duration_ms", duration.Milliseconds(),
	)

	if err != nil {
		logger.Error("Storage operation failed",
			"error", err.Error(),
		)
	} else {
		logger.Info("Storage operation completed successfully")
	}
}

func LogNotificationDelivery(ctx context.Context, userID, videoID, outcome string, err error) {
	logger := WithContext(ctx).With(
		"service", "relay",
		"user_id", userID,
		"video_id", videoID,
		"outcome", outcome,
	)

	if err != nil {
		logger.Error("Notification delivery failed",
			"error", err.Error(),
		)
	} else {
		logger.Info("Notification handled")
	}
}

func LogWebhook(ctx context.Context, webhook, objectKey string, duration time.Duration, err error) {
	logger := WithContext(ctx).With(
		"service", "webhook",
		"webhook", webhook,
		"object_key", objectKey,
		"duration_ms", duration.Milliseconds(),
	)

	if err != nil {
		logger.Error("Webhook handling failed",
			"error", err.Error(),
		)
	} else {
		logger.Info("Webhook handled successfully")
	}
}
