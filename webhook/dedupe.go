package webhook

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Deduplicator remembers message IDs so redelivered messages are handled once.
type Deduplicator interface {
	// Seen reports whether messageID was already recorded, recording it if not.
	Seen(ctx context.Context, messageID string) (bool, error)
}

// MemoryDeduplicator is a process-local Deduplicator. IDs are forgotten after ttl.
type MemoryDeduplicator struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	ttl       time.Duration
	clock     clockwork.Clock
	lastSweep time.Time
}

func NewMemoryDeduplicator(ttl time.Duration, clock clockwork.Clock) *MemoryDeduplicator {
	return &MemoryDeduplicator{
		seen:      make(map[string]time.Time),
		ttl:       ttl,
		clock:     clock,
		lastSweep: clock.Now(),
	}
}

func (d *MemoryDeduplicator) Seen(_ context.Context, messageID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if now.Sub(d.lastSweep) >= d.ttl {
		d.sweep(now)
	}

	if expiry, ok := d.seen[messageID]; ok && now.Before(expiry) {
		return true, nil
	}
	d.seen[messageID] = now.Add(d.ttl)
	return false, nil
}

func (d *MemoryDeduplicator) sweep(now time.Time) {
	for id, expiry := range d.seen {
		if !now.Before(expiry) {
			delete(d.seen, id)
		}
	}
	d.lastSweep = now
}

// Len returns the number of remembered IDs, including expired ones not yet swept.
func (d *MemoryDeduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
