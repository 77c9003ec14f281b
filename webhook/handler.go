package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Its-donkey/kappopher/helix"
	"github.com/jonboulle/clockwork"
	"github.com/suniastar/twitch-api/eventsub"
	"github.com/suniastar/twitch-api/internal/platform/correlation"
)

const (
	// Twitch recommends rejecting messages older than ten minutes.
	maxMessageAge   = 10 * time.Minute
	maxBodyBytes    = 1 << 20
	defaultDedupTTL = maxMessageAge
)

type (
	NotificationFunc func(ctx context.Context, env eventsub.Envelope)
	RevocationFunc   func(ctx context.Context, sub eventsub.Subscription)
	VerificationFunc func(ctx context.Context, sub eventsub.Subscription) bool
)

// Handler is an http.Handler for the EventSub webhook callback URL.
type Handler struct {
	secret         string
	parser         *eventsub.Parser
	clock          clockwork.Clock
	dedupe         Deduplicator
	metrics        *Metrics
	onNotification NotificationFunc
	onRevocation   RevocationFunc
	onVerification VerificationFunc
}

// Option configures a Handler.
type Option func(*Handler)

func WithNotificationHandler(fn NotificationFunc) Option {
	return func(h *Handler) { h.onNotification = fn }
}

func WithRevocationHandler(fn RevocationFunc) Option {
	return func(h *Handler) { h.onRevocation = fn }
}

// WithVerificationHandler decides whether a subscription's callback
// verification is answered. Without one, every verification is accepted.
func WithVerificationHandler(fn VerificationFunc) Option {
	return func(h *Handler) { h.onVerification = fn }
}

func WithParser(p *eventsub.Parser) Option {
	return func(h *Handler) { h.parser = p }
}

func WithClock(clock clockwork.Clock) Option {
	return func(h *Handler) { h.clock = clock }
}

func WithDeduplicator(d Deduplicator) Option {
	return func(h *Handler) { h.dedupe = d }
}

func WithMetrics(m *Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates a Handler verifying requests with secret.
func NewHandler(secret string, opts ...Option) *Handler {
	h := &Handler{
		secret: secret,
		parser: eventsub.NewParser(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.dedupe == nil {
		h.dedupe = NewMemoryDeduplicator(defaultDedupTTL, h.clock)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.metrics.rejected(rejectMethod)
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.metrics.rejected(rejectBody)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	messageID := r.Header.Get(helix.EventSubHeaderMessageID)
	timestamp := r.Header.Get(helix.EventSubHeaderMessageTimestamp)
	signature := r.Header.Get(helix.EventSubHeaderMessageSignature)
	if messageID == "" || timestamp == "" || !Verify(h.secret, messageID, timestamp, body, signature) {
		h.metrics.rejected(rejectSignature)
		slog.Warn("Rejected EventSub webhook with invalid signature", "message_id", messageID)
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	if !h.fresh(timestamp) {
		h.metrics.rejected(rejectStale)
		slog.Warn("Rejected stale EventSub webhook", "message_id", messageID, "timestamp", timestamp)
		http.Error(w, "stale message", http.StatusForbidden)
		return
	}

	ctx := correlation.WithID(r.Context(), messageID)

	messageType := eventsub.MessageType(r.Header.Get(helix.EventSubHeaderMessageType))

	// Verification redeliveries are answered again with the challenge.
	if messageType != eventsub.MessageTypeVerification {
		seen, err := h.dedupe.Seen(ctx, messageID)
		if err != nil {
			slog.WarnContext(ctx, "Message deduplication failed, processing anyway", "error", err)
		}
		if seen {
			h.metrics.duplicate()
			slog.DebugContext(ctx, "Dropping redelivered EventSub message")
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	h.metrics.message(messageType)

	switch messageType {
	case eventsub.MessageTypeVerification:
		h.handleVerification(ctx, w, body)
	case eventsub.MessageTypeRevocation:
		h.handleRevocation(ctx, w, body)
	case eventsub.MessageTypeNotification:
		h.handleNotification(ctx, w, body)
	default:
		h.metrics.rejected(rejectMalformed)
		slog.WarnContext(ctx, "Unsupported EventSub message type", "message_type", messageType)
		http.Error(w, "unsupported message type", http.StatusBadRequest)
	}
}

func (h *Handler) fresh(timestamp string) bool {
	sent, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return false
	}
	return h.clock.Since(sent) <= maxMessageAge
}

func (h *Handler) handleVerification(ctx context.Context, w http.ResponseWriter, body []byte) {
	challenge, sub, err := h.parser.ParseChallenge(body)
	if err != nil {
		h.metrics.rejected(rejectMalformed)
		slog.ErrorContext(ctx, "Failed to parse verification challenge", "error", err)
		http.Error(w, "malformed verification", http.StatusBadRequest)
		return
	}

	if h.onVerification != nil && !h.onVerification(ctx, sub) {
		h.metrics.rejected(rejectDenied)
		slog.InfoContext(ctx, "EventSub webhook verification denied", "subscription_id", sub.ID, "subscription_type", sub.Type)
		http.Error(w, "verification denied", http.StatusForbidden)
		return
	}

	slog.InfoContext(ctx, "EventSub webhook verification", "subscription_id", sub.ID, "subscription_type", sub.Type)
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.Itoa(len(challenge)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, challenge)
}

func (h *Handler) handleRevocation(ctx context.Context, w http.ResponseWriter, body []byte) {
	sub, err := h.parser.ParseSubscription(body)
	if err != nil {
		h.metrics.rejected(rejectMalformed)
		slog.ErrorContext(ctx, "Failed to parse revocation", "error", err)
		http.Error(w, "malformed revocation", http.StatusBadRequest)
		return
	}

	slog.InfoContext(ctx, "EventSub subscription revoked", "subscription_id", sub.ID, "type", sub.Type, "reason", sub.Status)
	if h.onRevocation != nil {
		h.onRevocation(ctx, sub)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNotification(ctx context.Context, w http.ResponseWriter, body []byte) {
	env, err := h.parser.Parse(body)
	if err != nil {
		kind := eventsub.KindOf(err)
		h.metrics.parseFailure(kind.String())

		// Newly introduced event types are expected; acknowledge so Twitch
		// does not count them as delivery failures.
		if errors.Is(err, eventsub.ErrUnknownEventType) {
			slog.InfoContext(ctx, "Skipping notification of unknown event type", "error", err)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		slog.ErrorContext(ctx, "Failed to parse notification", "kind", kind.String(), "error", err)
		http.Error(w, "malformed notification", http.StatusBadRequest)
		return
	}

	sub := env.Subscription
	h.metrics.notification(string(sub.Type), sub.Version)
	slog.DebugContext(ctx, "EventSub notification", "subscription_id", sub.ID, "type", sub.Type, "version", sub.Version)

	if h.onNotification != nil {
		h.onNotification(ctx, env)
	}
	w.WriteHeader(http.StatusNoContent)
}
