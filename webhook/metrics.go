package webhook

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/suniastar/twitch-api/eventsub"
)

const namespace = "eventsub"

// Rejection reasons used as the "reason" label.
const (
	rejectMethod    = "method"
	rejectBody      = "body"
	rejectSignature = "signature"
	rejectStale     = "stale"
	rejectMalformed = "malformed"
	rejectDenied    = "denied"
)

const labelOther = "other"

// Metrics holds Prometheus metrics for webhook processing.
type Metrics struct {
	MessagesTotal      *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	ParseFailuresTotal *prometheus.CounterVec
	RejectedTotal      *prometheus.CounterVec
	DuplicatesTotal    prometheus.Counter
}

// NewMetrics creates and registers webhook metrics on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "messages_total",
			Help:      "Total number of verified webhook messages by message type.",
		}, []string{"message_type"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "notifications_total",
			Help:      "Total number of decoded notifications by event type and version.",
		}, []string{"event_type", "version"}),
		ParseFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "parse_failures_total",
			Help:      "Total number of notifications that failed to parse, by error kind.",
		}, []string{"kind"}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "rejected_total",
			Help:      "Total number of rejected webhook requests by reason.",
		}, []string{"reason"}),
		DuplicatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "duplicates_total",
			Help:      "Total number of redelivered messages that were dropped.",
		}),
	}

	reg.MustRegister(m.MessagesTotal, m.NotificationsTotal, m.ParseFailuresTotal, m.RejectedTotal, m.DuplicatesTotal)
	return m
}

func (m *Metrics) rejected(reason string) {
	if m != nil {
		m.RejectedTotal.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) message(kind eventsub.MessageType) {
	if m != nil {
		m.MessagesTotal.WithLabelValues(messageLabel(kind)).Inc()
	}
}

// messageLabel keeps the message_type label bounded to the kinds Twitch sends
// to webhooks.
func messageLabel(kind eventsub.MessageType) string {
	switch kind {
	case eventsub.MessageTypeNotification, eventsub.MessageTypeRevocation, eventsub.MessageTypeVerification:
		return string(kind)
	default:
		return labelOther
	}
}

func (m *Metrics) notification(eventType, version string) {
	if m != nil {
		m.NotificationsTotal.WithLabelValues(eventType, version).Inc()
	}
}

func (m *Metrics) parseFailure(kind string) {
	if m != nil {
		m.ParseFailuresTotal.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) duplicate() {
	if m != nil {
		m.DuplicatesTotal.Inc()
	}
}
