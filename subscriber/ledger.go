package subscriber

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/suniastar/twitch-api/eventsub"
)

// ErrNotFound is returned by a Ledger when no subscription is recorded.
var ErrNotFound = errors.New("subscription not found")

// Ledger records the subscription IDs created on each conduit, keyed by Key.
type Ledger interface {
	Get(ctx context.Context, conduitID, key string) (string, error)
	Put(ctx context.Context, conduitID, key, subscriptionID string) error
	Delete(ctx context.Context, conduitID, key string) error
	// DeleteConduit forgets every subscription recorded for conduitID.
	DeleteConduit(ctx context.Context, conduitID string) error
}

// Key identifies a definition by type, version and condition, e.g.
// "stream.online@v1?broadcaster_user_id=1337".
func Key(def eventsub.Definition) string {
	values := make(url.Values, len(def.Condition()))
	for k, v := range def.Condition() {
		values.Set(k, v)
	}
	return eventsub.DiscriminantOf(def).String() + "?" + values.Encode()
}

// MemoryLedger is a process-local Ledger.
type MemoryLedger struct {
	mu       sync.RWMutex
	conduits map[string]map[string]string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{conduits: make(map[string]map[string]string)}
}

func (l *MemoryLedger) Get(_ context.Context, conduitID, key string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.conduits[conduitID][key]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (l *MemoryLedger) Put(_ context.Context, conduitID, key, subscriptionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	subs, ok := l.conduits[conduitID]
	if !ok {
		subs = make(map[string]string)
		l.conduits[conduitID] = subs
	}
	subs[key] = subscriptionID
	return nil
}

func (l *MemoryLedger) Delete(_ context.Context, conduitID, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.conduits[conduitID], key)
	return nil
}

func (l *MemoryLedger) DeleteConduit(_ context.Context, conduitID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.conduits, conduitID)
	return nil
}
