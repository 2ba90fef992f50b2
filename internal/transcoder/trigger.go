package transcoder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-backend/internal/metrics"
	"github.com/coursehub/coursehub-backend/pkg/logger"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Trigger launches an external transcoding job for an uploaded object and
// returns an opaque task handle. The worker that picks the job up reports
// back through the transcoder webhook; this side never waits on it.
type Trigger interface {
	Trigger(ctx context.Context, objectKey string) (string, error)
}

// Job is the descriptor handed to the transcoding worker.
type Job struct {
	TaskID       string `json:"task_id"`
	ObjectKey    string `json:"object_key"`
	UploadBucket string `json:"upload_bucket"`
	FinalBucket  string `json:"final_bucket"`
	WebhookURL   string `json:"webhook_url"`
}

// QueueTrigger publishes transcode jobs to a durable RabbitMQ queue.
type QueueTrigger struct {
	channel      *amqp.Channel
	queueName    string
	uploadBucket string
	finalBucket  string
	webhookURL   string
}

func NewQueueTrigger(conn *amqp.Connection, queueName, uploadBucket, finalBucket, webhookURL string) (*QueueTrigger, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open trigger channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare transcode queue: %w", err)
	}

	return &QueueTrigger{
		channel:      ch,
		queueName:    queueName,
		uploadBucket: uploadBucket,
		finalBucket:  finalBucket,
		webhookURL:   webhookURL,
	}, nil
}

func (t *QueueTrigger) Trigger(ctx context.Context, objectKey string) (string, error) {
	job := Job{
		TaskID:       uuid.New().String(),
		ObjectKey:    objectKey,
		UploadBucket: t.uploadBucket,
		FinalBucket:  t.finalBucket,
		WebhookURL:   t.webhookURL,
	}

	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal transcode job: %w", err)
	}

	err = t.channel.PublishWithContext(ctx,
		"",          // exchange
		t.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		})
	if err != nil {
		logger.Logger.Error("Failed to publish transcode job",
			"object_key", objectKey,
			"error", err.Error(),
		)
		return "", fmt.Errorf("publish transcode job: %w", err)
	}

	metrics.TranscodeJobsTriggered.Inc()
	logger.Logger.Info("Transcode job published",
		"task_id", job.TaskID,
		"object_key", objectKey,
	)
	return job.TaskID, nil
}

func (t *QueueTrigger) Close() error {
	return t.channel.Close()
}
