package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_notifications_total",
		Help: "Notifications handled by the dispatcher, by outcome",
	}, []string{"outcome"}) // direct, queued, fallback

	MailboxDrainedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_mailbox_drained_messages_total",
		Help: "Messages delivered from per-user mailboxes on reconnect",
	})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursehub_websocket_connections",
		Help: "Currently registered notification connections",
	})

	WebhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursehub_webhooks_total",
		Help: "Pipeline webhook calls, by webhook and result",
	}, []string{"webhook", "result"})

	TranscodeJobsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_transcode_jobs_triggered_total",
		Help: "Transcode jobs dispatched to the worker queue",
	})
)
