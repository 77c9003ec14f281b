package subscriber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Its-donkey/kappopher/helix"
	"github.com/suniastar/twitch-api/eventsub"
)

const appTokenTimeout = 15 * time.Second

// Conduit is the subset of conduit state the manager needs.
type Conduit struct {
	ID         string
	ShardCount int
}

// API is the subset of the Helix API used by Manager.
type API interface {
	GetConduits(ctx context.Context) ([]Conduit, error)
	CreateConduit(ctx context.Context, shardCount int) (Conduit, error)
	UpdateConduitShards(ctx context.Context, params *helix.UpdateConduitShardsParams) error
	DeleteConduit(ctx context.Context, conduitID string) error

	CreateEventSubSubscription(ctx context.Context, params *helix.CreateEventSubSubscriptionParams) (eventsub.Subscription, error)
	// ListEventSubSubscriptions returns every subscription of the given type,
	// following pagination.
	ListEventSubSubscriptions(ctx context.Context, eventType eventsub.EventType) ([]eventsub.Subscription, error)
	DeleteEventSubSubscription(ctx context.Context, subscriptionID string) error
}

// HelixClient implements API on top of an app-scoped kappopher client.
type HelixClient struct {
	client *helix.Client
}

// NewHelixClient obtains an app access token with the client credentials grant
// and returns a client ready for conduit and subscription management.
func NewHelixClient(ctx context.Context, clientID, clientSecret string) (*HelixClient, error) {
	ctx, cancel := context.WithTimeout(ctx, appTokenTimeout)
	defer cancel()

	auth := helix.NewAuthClient(helix.AuthConfig{ClientID: clientID, ClientSecret: clientSecret})
	if _, err := auth.GetAppAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("failed to get app access token: %w", err)
	}

	return &HelixClient{client: helix.NewClient(clientID, auth)}, nil
}

func (c *HelixClient) GetConduits(ctx context.Context) ([]Conduit, error) {
	resp, err := c.client.GetConduits(ctx)
	if err != nil {
		return nil, err
	}

	conduits := make([]Conduit, 0, len(resp.Data))
	for _, conduit := range resp.Data {
		conduits = append(conduits, Conduit{ID: conduit.ID, ShardCount: int(conduit.ShardCount)})
	}
	return conduits, nil
}

func (c *HelixClient) CreateConduit(ctx context.Context, shardCount int) (Conduit, error) {
	conduit, err := c.client.CreateConduit(ctx, shardCount)
	if err != nil {
		return Conduit{}, err
	}
	if conduit == nil {
		return Conduit{}, errors.New("no conduit returned from Twitch API")
	}
	return Conduit{ID: conduit.ID, ShardCount: int(conduit.ShardCount)}, nil
}

func (c *HelixClient) UpdateConduitShards(ctx context.Context, params *helix.UpdateConduitShardsParams) error {
	_, err := c.client.UpdateConduitShards(ctx, params)
	return err
}

func (c *HelixClient) DeleteConduit(ctx context.Context, conduitID string) error {
	return c.client.DeleteConduit(ctx, conduitID)
}

func (c *HelixClient) CreateEventSubSubscription(ctx context.Context, params *helix.CreateEventSubSubscriptionParams) (eventsub.Subscription, error) {
	sub, err := c.client.CreateEventSubSubscription(ctx, params)
	if err != nil {
		return eventsub.Subscription{}, err
	}
	if sub == nil {
		return eventsub.Subscription{}, errors.New("no subscription returned from Twitch API")
	}
	return fromHelix(sub), nil
}

func (c *HelixClient) ListEventSubSubscriptions(ctx context.Context, eventType eventsub.EventType) ([]eventsub.Subscription, error) {
	params := helix.GetEventSubSubscriptionsParams{Type: string(eventType)}

	var subs []eventsub.Subscription
	for {
		resp, err := c.client.GetEventSubSubscriptions(ctx, &params)
		if err != nil {
			return nil, err
		}

		for i := range resp.Data {
			subs = append(subs, fromHelix(&resp.Data[i]))
		}

		if resp.Pagination == nil || resp.Pagination.Cursor == "" {
			return subs, nil
		}
		params.PaginationParams = &helix.PaginationParams{After: resp.Pagination.Cursor}
	}
}

func (c *HelixClient) DeleteEventSubSubscription(ctx context.Context, subscriptionID string) error {
	return c.client.DeleteEventSubSubscription(ctx, subscriptionID)
}

func fromHelix(sub *helix.EventSubSubscription) eventsub.Subscription {
	condition := make(map[string]string, len(sub.Condition))
	for k, v := range sub.Condition {
		condition[k] = fmt.Sprint(v)
	}
	return eventsub.Subscription{
		ID:        sub.ID,
		Type:      eventsub.EventType(sub.Type),
		Version:   string(sub.Version),
		Status:    string(sub.Status),
		Cost:      int(sub.Cost),
		Condition: condition,
		Transport: eventsub.Transport{
			Method:         string(sub.Transport.Method),
			Callback:       sub.Transport.Callback,
			SessionID:      sub.Transport.SessionID,
			ConduitID:      sub.Transport.ConduitID,
			ConnectedAt:    optionalTime(sub.Transport.ConnectedAt),
			DisconnectedAt: optionalTime(sub.Transport.DisconnectedAt),
		},
		CreatedAt: helixTime(sub.CreatedAt),
	}
}

// helixTime accepts a timestamp either decoded or as the RFC 3339 string Twitch sends.
func helixTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func optionalTime(v any) *time.Time {
	t := helixTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}
