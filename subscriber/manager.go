package subscriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Its-donkey/kappopher/helix"
	"github.com/suniastar/twitch-api/eventsub"
	"github.com/suniastar/twitch-api/internal/platform/retry"
)

const (
	defaultShardID        = "0"
	retryInitialBackoff   = 1 * time.Second
	retryRateLimitBackoff = 30 * time.Second
)

// ErrNoConduit is returned when subscriptions are managed before Setup.
var ErrNoConduit = errors.New("conduit not set up")

// Manager owns a webhook-backed conduit and the subscriptions on it.
type Manager struct {
	api    API
	ledger Ledger
	policy retry.Policy

	callbackURL string
	secret      string
	conduitID   string
}

type Option func(*Manager)

// WithRetryPolicy overrides the policy used for subscription create and delete.
func WithRetryPolicy(p retry.Policy) Option {
	return func(m *Manager) { m.policy = p }
}

func NewManager(api API, ledger Ledger, callbackURL, secret string, opts ...Option) *Manager {
	m := &Manager{
		api:         api,
		ledger:      ledger,
		callbackURL: callbackURL,
		secret:      secret,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   retryInitialBackoff,
			RateLimitBackoff: retryRateLimitBackoff,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ConduitID returns the conduit configured by Setup, or "" before Setup.
func (m *Manager) ConduitID() string {
	return m.conduitID
}

// Setup finds or creates the conduit and points its shard at the callback URL.
// A conduit whose shard cannot be configured is replaced.
func (m *Manager) Setup(ctx context.Context) error {
	conduit, err := m.findOrCreateConduit(ctx)
	if err != nil {
		return err
	}

	if err := m.configureShard(ctx, conduit.ID); err != nil {
		conduit, err = m.recreateConduit(ctx, conduit.ID, err)
		if err != nil {
			return err
		}
	}

	m.conduitID = conduit.ID
	slog.InfoContext(ctx, "Conduit configured with webhook shard", "conduit_id", conduit.ID, "callback_url", m.callbackURL)
	return nil
}

func (m *Manager) findOrCreateConduit(ctx context.Context) (Conduit, error) {
	conduits, err := m.api.GetConduits(ctx)
	if err != nil {
		return Conduit{}, fmt.Errorf("failed to list conduits: %w", err)
	}

	if len(conduits) > 0 {
		slog.InfoContext(ctx, "Found existing conduit", "conduit_id", conduits[0].ID)
		return conduits[0], nil
	}

	return m.createConduit(ctx)
}

func (m *Manager) createConduit(ctx context.Context) (Conduit, error) {
	conduit, err := m.api.CreateConduit(ctx, 1)
	if err != nil {
		return Conduit{}, fmt.Errorf("failed to create conduit: %w", err)
	}

	slog.InfoContext(ctx, "Created conduit", "conduit_id", conduit.ID, "shard_count", conduit.ShardCount)
	return conduit, nil
}

func (m *Manager) configureShard(ctx context.Context, conduitID string) error {
	shard := helix.UpdateConduitShardParams{
		ID: defaultShardID,
		Transport: helix.UpdateConduitShardTransport{
			Method:   "webhook",
			Callback: m.callbackURL,
			Secret:   m.secret,
		},
	}

	params := helix.UpdateConduitShardsParams{ConduitID: conduitID, Shards: []helix.UpdateConduitShardParams{shard}}
	if err := m.api.UpdateConduitShards(ctx, &params); err != nil {
		return fmt.Errorf("failed to update conduit shards: %w", err)
	}
	return nil
}

func (m *Manager) recreateConduit(ctx context.Context, staleID string, shardErr error) (Conduit, error) {
	slog.ErrorContext(ctx, "Shard configuration failed, recreating conduit", "conduit_id", staleID, "error", shardErr)

	if err := m.api.DeleteConduit(ctx, staleID); err != nil {
		return Conduit{}, fmt.Errorf("failed to delete stale conduit: %w", err)
	}
	if err := m.ledger.DeleteConduit(ctx, staleID); err != nil {
		slog.WarnContext(ctx, "Failed to drop ledger of stale conduit", "conduit_id", staleID, "error", err)
	}

	conduit, err := m.createConduit(ctx)
	if err != nil {
		return Conduit{}, err
	}

	if err := m.configureShard(ctx, conduit.ID); err != nil {
		return Conduit{}, fmt.Errorf("failed to configure shard on new conduit: %w", err)
	}
	return conduit, nil
}

// Cleanup forgets the conduit's ledger records and deletes the conduit, which
// implicitly removes all of its subscriptions on Twitch.
func (m *Manager) Cleanup(ctx context.Context) error {
	if m.conduitID == "" {
		return nil
	}

	if err := m.ledger.DeleteConduit(ctx, m.conduitID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete stale subscription records", "conduit_id", m.conduitID, "error", err)
	}

	if err := m.api.DeleteConduit(ctx, m.conduitID); err != nil {
		return fmt.Errorf("failed to delete conduit: %w", err)
	}

	slog.InfoContext(ctx, "Deleted conduit", "conduit_id", m.conduitID)
	m.conduitID = ""
	return nil
}

// CreateParams builds the request creating def on a conduit transport.
func CreateParams(def eventsub.Definition, conduitID string) *helix.CreateEventSubSubscriptionParams {
	return &helix.CreateEventSubSubscriptionParams{
		Type:      string(def.EventType()),
		Version:   def.Version(),
		Condition: def.Condition(),
		Transport: helix.CreateEventSubTransport{
			Method:    "conduit",
			ConduitID: conduitID,
		},
	}
}

// Subscribe creates def on the conduit unless the ledger already records it and
// returns the subscription ID.
func (m *Manager) Subscribe(ctx context.Context, def eventsub.Definition) (string, error) {
	if m.conduitID == "" {
		return "", ErrNoConduit
	}

	key := Key(def)
	existing, err := m.ledger.Get(ctx, m.conduitID, key)
	if err == nil {
		slog.InfoContext(ctx, "EventSub subscription already exists", "key", key, "subscription_id", existing)
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("failed to check existing subscription: %w", err)
	}

	p := m.policy
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.WarnContext(ctx, "EventSub subscribe failed, retrying", "key", key, "attempt", attempt, "backoff_seconds", backoff.Seconds(), "error", err)
	}

	sub, err := retry.Do(ctx, p, classifyEventSubError, func() (eventsub.Subscription, error) {
		return m.attemptSubscribe(ctx, def, key)
	})
	if err != nil {
		label := "after retries"
		if _, ok := errors.AsType[*retry.PermanentError](err); ok {
			label = "permanent"
		}

		slog.ErrorContext(ctx, "EventSub subscribe failed", "key", key, "cause", label, "error", err)
		return "", fmt.Errorf("EventSub subscribe failed (%s): %w", label, err)
	}

	slog.InfoContext(ctx, "Subscribed to EventSub", "type", def.EventType(), "version", def.Version(), "subscription_id", sub.ID)
	return sub.ID, nil
}

func (m *Manager) attemptSubscribe(ctx context.Context, def eventsub.Definition, key string) (eventsub.Subscription, error) {
	sub, err := m.api.CreateEventSubSubscription(ctx, CreateParams(def, m.conduitID))
	created := err == nil
	if err != nil {
		apiErr, ok := errors.AsType[*helix.APIError](err)
		if !ok || apiErr.StatusCode != http.StatusConflict {
			return eventsub.Subscription{}, fmt.Errorf("failed to create EventSub subscription: %w", err)
		}

		slog.InfoContext(ctx, "EventSub subscription already exists on Twitch, recovering", "key", key)
		if sub, err = m.findExistingSubscription(ctx, def); err != nil {
			return eventsub.Subscription{}, err
		}
	}

	if err := m.ledger.Put(ctx, m.conduitID, key, sub.ID); err != nil {
		if created {
			// Compensate so the next attempt does not hit a 409 for an unrecorded subscription.
			if cleanupErr := m.api.DeleteEventSubSubscription(ctx, sub.ID); cleanupErr != nil {
				slog.ErrorContext(ctx, "Failed to clean up Twitch subscription after ledger persist failure", "subscription_id", sub.ID, "error", cleanupErr)
			}
		}
		return eventsub.Subscription{}, fmt.Errorf("failed to persist subscription: %w", err)
	}

	return sub, nil
}

func (m *Manager) findExistingSubscription(ctx context.Context, def eventsub.Definition) (eventsub.Subscription, error) {
	subs, err := m.api.ListEventSubSubscriptions(ctx, def.EventType())
	if err != nil {
		return eventsub.Subscription{}, fmt.Errorf("failed to list subscriptions for 409 recovery: %w", err)
	}

	for _, sub := range subs {
		if sub.Version == def.Version() && sameCondition(sub.Condition, def.Condition()) {
			return sub, nil
		}
	}

	return eventsub.Subscription{}, fmt.Errorf("subscription not found on Twitch despite 409 conflict (%s)", Key(def))
}

func sameCondition(got, want map[string]string) bool {
	if len(got) != len(want) {
		return false
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

// Unsubscribe deletes def from Twitch and the ledger. Unknown definitions are
// a no-op.
func (m *Manager) Unsubscribe(ctx context.Context, def eventsub.Definition) error {
	if m.conduitID == "" {
		return ErrNoConduit
	}

	key := Key(def)
	subscriptionID, err := m.ledger.Get(ctx, m.conduitID, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}

	twitchClean := m.deleteSubscriptionFromTwitch(ctx, subscriptionID)

	if err := m.ledger.Delete(ctx, m.conduitID, key); err != nil {
		return fmt.Errorf("failed to delete subscription from ledger: %w", err)
	}

	if twitchClean {
		slog.InfoContext(ctx, "Unsubscribed from EventSub", "key", key, "subscription_id", subscriptionID)
	} else {
		slog.WarnContext(ctx, "Deleted subscription from ledger but Twitch unsubscribe may have failed", "key", key, "subscription_id", subscriptionID)
	}
	return nil
}

func (m *Manager) deleteSubscriptionFromTwitch(ctx context.Context, subscriptionID string) bool {
	p := m.policy
	p.OnRetry = func(attempt int, retryErr error, backoff time.Duration) {
		slog.WarnContext(ctx, "EventSub unsubscribe failed, retrying", "subscription_id", subscriptionID, "attempt", attempt, "backoff_seconds", backoff.Seconds(), "error", retryErr)
	}

	err := retry.DoVoid(ctx, p, classifyEventSubError, func() error {
		return m.api.DeleteEventSubSubscription(ctx, subscriptionID)
	})
	if err != nil {
		slog.ErrorContext(ctx, "EventSub unsubscribe failed, subscription may be orphaned", "subscription_id", subscriptionID, "error", err)
		return false
	}
	return true
}

func classifyEventSubError(err error) retry.Action {
	apiErr, ok := errors.AsType[*helix.APIError](err)
	if !ok {
		return retry.Retry
	}

	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return retry.After
	case apiErr.StatusCode >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}
