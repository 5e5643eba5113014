package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "messenger"

// Metrics holds the Prometheus collectors of the realtime channel.
type Metrics struct {
	ActiveSessions     prometheus.Gauge
	JoinedRooms        prometheus.Gauge
	EventsReceived     *prometheus.CounterVec
	EventsSent         *prometheus.CounterVec
	EventsDropped      *prometheus.CounterVec
	EventsRejected     *prometheus.CounterVec
	RateLimited        prometheus.Counter
	PersistFailures    *prometheus.CounterVec
	PersistQueueLength prometheus.Gauge
	TrackedMessages    prometheus.Gauge
}

// New registers every collector on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_active_sessions",
			Help:      "Number of open realtime sessions",
		}),
		JoinedRooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_joined_rooms",
			Help:      "Number of (session, room) memberships",
		}),
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_received_total",
			Help:      "Client events accepted, by event name",
		}, []string{"event"}),
		EventsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_sent_total",
			Help:      "Server events queued to sessions, by event name",
		}, []string{"event"}),
		EventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_dropped_total",
			Help:      "Server events dropped because a session send buffer was full",
		}, []string{"event"}),
		EventsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_rejected_total",
			Help:      "Client events answered with an error event, by error code",
		}, []string{"code"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_rate_limited_total",
			Help:      "Client events refused by the per-session rate limit",
		}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Background persistence jobs that failed or were dropped, by job kind",
		}, []string{"kind"}),
		PersistQueueLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "persist_queue_length",
			Help:      "Jobs waiting in the persister queues",
		}),
		TrackedMessages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "status_tracked_messages",
			Help:      "Messages held by the in-memory status tracker",
		}),
	}
}
