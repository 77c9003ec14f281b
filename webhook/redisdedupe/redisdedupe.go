// Package redisdedupe shares webhook message deduplication across replicas through Redis.
package redisdedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "eventsub:message:"

// Deduplicator implements webhook.Deduplicator with SET NX and a TTL.
type Deduplicator struct {
	rdb *goredis.Client
	ttl time.Duration
}

func New(rdb *goredis.Client, ttl time.Duration) *Deduplicator {
	return &Deduplicator{rdb: rdb, ttl: ttl}
}

// Seen returns true if messageID was recorded within the TTL, false if this
// call recorded it.
func (d *Deduplicator) Seen(ctx context.Context, messageID string) (bool, error) {
	args := goredis.SetArgs{TTL: d.ttl, Mode: "NX"}
	_, err := d.rdb.SetArgs(ctx, keyPrefix+messageID, "1", args).Result()
	if errors.Is(err, goredis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to record message id: %w", err)
	}
	return false, nil
}
