package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// WebSocket
	WSConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_ws_connections",
			Help: "Open WebSocket connections",
		},
		[]string{"endpoint"}, // "room" or "notifications"
	)

	WSRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_rejected_total",
			Help: "WebSocket handshakes closed by the gateway",
		},
		[]string{"code"},
	)

	WSFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_frames_total",
			Help: "Inbound frames by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// Fabric
	FabricPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_fabric_published_total",
			Help: "Events published per group kind",
		},
		[]string{"kind"},
	)

	FabricDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_fabric_dropped_total",
			Help: "Events dropped because a connection buffer was full",
		},
	)

	// Business
	MessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_appended_total",
			Help: "Messages persisted",
		},
		[]string{"message_type"},
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_notifications_created_total",
			Help: "ChatNotification rows created",
		},
	)
)
