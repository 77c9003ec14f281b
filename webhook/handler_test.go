package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Its-donkey/kappopher/helix"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suniastar/twitch-api/eventsub"
	"github.com/suniastar/twitch-api/internal/platform/correlation"
)

func TestMain(m *testing.M) {
	handler := correlation.NewHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(slog.New(handler))
	os.Exit(m.Run())
}

const testWebhookSecret = "test-webhook-secret-1234567890"

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// recorder collects handler callbacks.
type recorder struct {
	mu            sync.Mutex
	notifications []eventsub.Envelope
	revocations   []eventsub.Subscription
	correlationID string
}

func (r *recorder) notify(ctx context.Context, env eventsub.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, env)
	r.correlationID, _ = correlation.ID(ctx)
}

func (r *recorder) revoke(_ context.Context, sub eventsub.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revocations = append(r.revocations, sub)
}

func newTestHandler(t *testing.T, opts ...Option) (*Handler, *recorder, *Metrics) {
	t.Helper()
	rec := &recorder{}
	metrics := NewMetrics(prometheus.NewRegistry())
	base := []Option{
		WithClock(clockwork.NewFakeClockAt(testNow)),
		WithMetrics(metrics),
		WithNotificationHandler(rec.notify),
		WithRevocationHandler(rec.revoke),
	}
	return NewHandler(testWebhookSecret, append(base, opts...)...), rec, metrics
}

func streamOnlineBody(eventType eventsub.EventType, extra string) string {
	return fmt.Sprintf(`{
		"subscription": {
			"id": "sub-123", "type": %q, "version": "1", "status": "enabled", "cost": 1,
			"condition": {"broadcaster_user_id": "1337"},
			"transport": {"method": "webhook", "callback": "https://example.com/webhooks/eventsub"},
			"created_at": "2024-03-01T11:00:00Z"
		},
		"event": {
			"id": "9001", "broadcaster_user_id": "1337", "broadcaster_user_login": "cool_user",
			"broadcaster_user_name": "Cool_User", "type": "live", "started_at": "2024-03-01T11:59:00Z"%s
		}
	}`, eventType, extra)
}

func signedRequest(secret, messageID string, sentAt time.Time, messageType eventsub.MessageType, body string) *http.Request {
	timestamp := sentAt.Format(time.RFC3339Nano)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/eventsub", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(helix.EventSubHeaderMessageID, messageID)
	req.Header.Set(helix.EventSubHeaderMessageTimestamp, timestamp)
	req.Header.Set(helix.EventSubHeaderMessageSignature, Sign(secret, messageID, timestamp, []byte(body)))
	req.Header.Set(helix.EventSubHeaderMessageType, string(messageType))
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Notification(t *testing.T) {
	h, rec, metrics := newTestHandler(t)
	messageID := uuid.NewString()

	rr := serve(h, signedRequest(testWebhookSecret, messageID, testNow, eventsub.MessageTypeNotification, streamOnlineBody(eventsub.EventTypeStreamOnline, "")))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, rec.notifications, 1)
	online, ok := eventsub.PayloadAs[eventsub.StreamOnlineV1Payload](rec.notifications[0])
	require.True(t, ok)
	assert.Equal(t, "9001", online.ID)
	assert.Equal(t, messageID, rec.correlationID)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("stream.online", "1")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MessagesTotal.WithLabelValues("notification")), 0)
}

func TestHandler_InvalidSignature(t *testing.T) {
	h, rec, metrics := newTestHandler(t)

	req := signedRequest("some-other-secret-value", uuid.NewString(), testNow, eventsub.MessageTypeNotification, streamOnlineBody(eventsub.EventTypeStreamOnline, ""))
	rr := serve(h, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, rec.notifications)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RejectedTotal.WithLabelValues(rejectSignature)), 0)
}

func TestHandler_TamperedBody(t *testing.T) {
	h, rec, _ := newTestHandler(t)

	req := signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeNotification, streamOnlineBody(eventsub.EventTypeStreamOnline, ""))
	req.Body = http.NoBody
	rr := serve(h, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, rec.notifications)
}

func TestHandler_MissingHeaders(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/eventsub", strings.NewReader(`{}`))
	rr := serve(h, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHandler_StaleMessage(t *testing.T) {
	h, rec, metrics := newTestHandler(t)

	sentAt := testNow.Add(-11 * time.Minute)
	rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), sentAt, eventsub.MessageTypeNotification, streamOnlineBody(eventsub.EventTypeStreamOnline, "")))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, rec.notifications)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RejectedTotal.WithLabelValues(rejectStale)), 0)
}

func TestHandler_DuplicateMessage(t *testing.T) {
	h, rec, metrics := newTestHandler(t)
	messageID := uuid.NewString()
	body := streamOnlineBody(eventsub.EventTypeStreamOnline, "")

	first := serve(h, signedRequest(testWebhookSecret, messageID, testNow, eventsub.MessageTypeNotification, body))
	second := serve(h, signedRequest(testWebhookSecret, messageID, testNow, eventsub.MessageTypeNotification, body))

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.Len(t, rec.notifications, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DuplicatesTotal), 0)
}

type failingDeduplicator struct{}

func (failingDeduplicator) Seen(context.Context, string) (bool, error) {
	return false, errors.New("redis unavailable")
}

func TestHandler_DeduplicatorErrorStillProcesses(t *testing.T) {
	h, rec, _ := newTestHandler(t, WithDeduplicator(failingDeduplicator{}))

	rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeNotification, streamOnlineBody(eventsub.EventTypeStreamOnline, "")))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, rec.notifications, 1)
}

func TestHandler_UnknownEventTypeAcknowledged(t *testing.T) {
	h, rec, metrics := newTestHandler(t)

	rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeNotification, streamOnlineBody("channel.hype_train.begin", "")))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rec.notifications)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ParseFailuresTotal.WithLabelValues("unknown_event_type")), 0)
}

func TestHandler_MalformedNotification(t *testing.T) {
	h, rec, metrics := newTestHandler(t)
	body := strings.Replace(streamOnlineBody(eventsub.EventTypeStreamOnline, ""), `"id": "9001", `, "", 1)

	rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeNotification, body))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, rec.notifications)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ParseFailuresTotal.WithLabelValues("malformed_payload")), 0)
}

func TestHandler_StrictParser(t *testing.T) {
	body := streamOnlineBody(eventsub.EventTypeStreamOnline, `, "unexpected": 1`)

	permissive, rec, _ := newTestHandler(t)
	rr := serve(permissive, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeNotification, body))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, rec.notifications, 1)

	strict, rec, _ := newTestHandler(t, WithParser(eventsub.NewParser(eventsub.WithStrict(true))))
	rr = serve(strict, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeNotification, body))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, rec.notifications)
}

const verificationBody = `{
	"challenge": "pogchamp-kappa-360noscope-vohiyo",
	"subscription": {
		"id": "f1c2a387-161a-49f9-a165-0f21d7a4e1c4", "status": "webhook_callback_verification_pending",
		"type": "channel.follow", "version": "2", "cost": 1,
		"condition": {"broadcaster_user_id": "12826", "moderator_user_id": "12826"},
		"transport": {"method": "webhook", "callback": "https://example.com/webhooks/callback"},
		"created_at": "2019-11-16T10:11:12.634234626Z"
	}
}`

func TestHandler_Verification(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeVerification, verificationBody))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	assert.Equal(t, "pogchamp-kappa-360noscope-vohiyo", rr.Body.String())
}

func TestHandler_VerificationRedelivered(t *testing.T) {
	h, _, metrics := newTestHandler(t)
	messageID := uuid.NewString()

	for range 2 {
		rr := serve(h, signedRequest(testWebhookSecret, messageID, testNow, eventsub.MessageTypeVerification, verificationBody))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pogchamp-kappa-360noscope-vohiyo", rr.Body.String())
	}
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.DuplicatesTotal), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.MessagesTotal.WithLabelValues(string(eventsub.MessageTypeVerification))), 0)
}

func TestHandler_VerificationDenied(t *testing.T) {
	var verified eventsub.Subscription
	deny := func(_ context.Context, sub eventsub.Subscription) bool {
		verified = sub
		return false
	}
	h, _, metrics := newTestHandler(t, WithVerificationHandler(deny))

	rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeVerification, verificationBody))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotContains(t, rr.Body.String(), "pogchamp")
	assert.Equal(t, eventsub.EventTypeChannelFollow, verified.Type)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RejectedTotal.WithLabelValues(rejectDenied)), 0)
}

func TestHandler_Revocation(t *testing.T) {
	h, rec, _ := newTestHandler(t)
	body := `{"subscription": {
		"id": "f1c2a387", "status": "authorization_revoked", "type": "channel.follow", "version": "2", "cost": 1,
		"condition": {"broadcaster_user_id": "12826"},
		"transport": {"method": "webhook", "callback": "https://example.com/webhooks/callback"},
		"created_at": "2019-11-16T10:11:12.634234626Z"
	}}`

	rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeRevocation, body))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, rec.revocations, 1)
	assert.Equal(t, eventsub.StatusAuthorizationRevoked, rec.revocations[0].Status)
}

func TestHandler_UnsupportedMessageType(t *testing.T) {
	h, _, metrics := newTestHandler(t)

	for _, messageType := range []eventsub.MessageType{"session_keepalive", "made_up_type"} {
		rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), testNow, messageType, `{}`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.MessagesTotal.WithLabelValues(labelOther)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.MessagesTotal), "unknown message types share one label value")
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h, _, metrics := newTestHandler(t)

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/webhooks/eventsub", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RejectedTotal.WithLabelValues(rejectMethod)), 0)
}

func TestHandler_NoMetrics(t *testing.T) {
	h := NewHandler(testWebhookSecret, WithClock(clockwork.NewFakeClockAt(testNow)))

	rr := serve(h, signedRequest(testWebhookSecret, uuid.NewString(), testNow, eventsub.MessageTypeNotification, streamOnlineBody(eventsub.EventTypeStreamOnline, "")))

	assert.Equal(t, http.StatusNoContent, rr.Code)
}
