// Package redisledger stores subscriber ledgers in Redis, one hash per conduit.
package redisledger

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/suniastar/twitch-api/subscriber"
)

// Ledger implements subscriber.Ledger. Hash fields are subscriber.Key values
// and hash values are subscription IDs.
type Ledger struct {
	rdb goredis.Cmdable
}

func New(rdb goredis.Cmdable) *Ledger {
	return &Ledger{rdb: rdb}
}

func conduitKey(conduitID string) string {
	return "eventsub:conduit:" + conduitID + ":subscriptions"
}

func (l *Ledger) Get(ctx context.Context, conduitID, key string) (string, error) {
	id, err := l.rdb.HGet(ctx, conduitKey(conduitID), key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", subscriber.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read subscription %s: %w", key, err)
	}
	return id, nil
}

func (l *Ledger) Put(ctx context.Context, conduitID, key, subscriptionID string) error {
	if err := l.rdb.HSet(ctx, conduitKey(conduitID), key, subscriptionID).Err(); err != nil {
		return fmt.Errorf("failed to record subscription %s: %w", key, err)
	}
	return nil
}

func (l *Ledger) Delete(ctx context.Context, conduitID, key string) error {
	if err := l.rdb.HDel(ctx, conduitKey(conduitID), key).Err(); err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", key, err)
	}
	return nil
}

func (l *Ledger) DeleteConduit(ctx context.Context, conduitID string) error {
	if err := l.rdb.Del(ctx, conduitKey(conduitID)).Err(); err != nil {
		return fmt.Errorf("failed to delete ledger of conduit %s: %w", conduitID, err)
	}
	return nil
}

// Subscriptions returns every recorded key and subscription ID of a conduit.
func (l *Ledger) Subscriptions(ctx context.Context, conduitID string) (map[string]string, error) {
	subs, err := l.rdb.HGetAll(ctx, conduitKey(conduitID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions of conduit %s: %w", conduitID, err)
	}
	return subs, nil
}
