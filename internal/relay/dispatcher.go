package relay

import (
	"context"
	"fmt"

	"github.com/coursehub/coursehub-backend/internal/metrics"
	"github.com/coursehub/coursehub-backend/pkg/logger"
	"github.com/gorilla/websocket"
)

// Dispatcher routes a notification to a user: directly over the live
// connection when one is registered, otherwise into the durable mailbox.
type Dispatcher struct {
	registry *Registry
	mailbox  Mailbox
}

func NewDispatcher(registry *Registry, mailbox Mailbox) *Dispatcher {
	return &Dispatcher{registry: registry, mailbox: mailbox}
}

// DeliverOrQueue sends msg to userID over its registered connection, or
// enqueues it when the user is offline. The lookup-then-send sequence has
// an inherent race: the connection can close between the lookup and the
// write. A failed write therefore falls back to the mailbox rather than
// dropping the message, which means a message can in rare cases be both
// sent and queued. Status pushes are idempotent on the client, so the
// duplicate is acceptable; a lost message is not.
//
// A mailbox error propagates: the caller's operation must fail loudly
// rather than silently lose a notification.
func (d *Dispatcher) DeliverOrQueue(ctx context.Context, userID string, msg Message) error {
	if userID == "" {
		return fmt.Errorf("deliver notification: empty user id for video %s", msg.VideoID)
	}

	payload, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	conn, ok := d.registry.Lookup(userID)
	if !ok {
		if err := d.mailbox.Enqueue(ctx, userID, payload); err != nil {
			logger.LogNotificationDelivery(ctx, userID, msg.VideoID, "queued", err)
			return fmt.Errorf("enqueue notification: %w", err)
		}
		metrics.NotificationsTotal.WithLabelValues("queued").Inc()
		logger.LogNotificationDelivery(ctx, userID, msg.VideoID, "queued", nil)
		return nil
	}

	if writeErr := conn.WriteMessage(websocket.TextMessage, payload); writeErr != nil {
		logger.Logger.Warn("Direct send failed, falling back to mailbox",
			"user_id", userID,
			"video_id", msg.VideoID,
			"error", writeErr.Error(),
		)
		if err := d.mailbox.Enqueue(ctx, userID, payload); err != nil {
			logger.LogNotificationDelivery(ctx, userID, msg.VideoID, "fallback", err)
			return fmt.Errorf("enqueue notification after failed send: %w", err)
		}
		metrics.NotificationsTotal.WithLabelValues("fallback").Inc()
		logger.LogNotificationDelivery(ctx, userID, msg.VideoID, "fallback", nil)
		return nil
	}

	metrics.NotificationsTotal.WithLabelValues("direct").Inc()
	logger.LogNotificationDelivery(ctx, userID, msg.VideoID, "direct", nil)
	return nil
}
