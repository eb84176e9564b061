package common

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/fxpay/pkg/eventbus"
	"golang.org/x/sync/singleflight"
)

// KeyExtractor extracts an idempotency key from an event
type KeyExtractor func(eventbus.Event) string

// DefaultRetention is how long a processed key is remembered. Redeliveries
// after that are still absorbed by the conditional status transition.
const DefaultRetention = 24 * time.Hour

// IdempotencyTracker tracks processed events by key for a bounded window.
type IdempotencyTracker struct {
	mu        sync.Mutex
	processed map[string]time.Time
	retention time.Duration
	lastSweep time.Time
	now       func() time.Time
	inflight  singleflight.Group
}

// NewIdempotencyTracker creates a tracker with DefaultRetention.
func NewIdempotencyTracker() *IdempotencyTracker {
	return NewIdempotencyTrackerWithRetention(DefaultRetention)
}

// NewIdempotencyTrackerWithRetention creates a tracker that forgets keys
// once they are older than retention.
func NewIdempotencyTrackerWithRetention(retention time.Duration) *IdempotencyTracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &IdempotencyTracker{
		processed: make(map[string]time.Time),
		retention: retention,
		now:       time.Now,
	}
}

// Store marks a key as processed
func (t *IdempotencyTracker) Store(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.processed[key] = now.Add(t.retention)
	if now.Sub(t.lastSweep) >= t.retention {
		for k, expires := range t.processed {
			if !now.Before(expires) {
				delete(t.processed, k)
			}
		}
		t.lastSweep = now
	}
}

// Seen reports whether key was processed successfully within the retention window.
func (t *IdempotencyTracker) Seen(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	expires, ok := t.processed[key]
	return ok && t.now().Before(expires)
}

// Delete removes a key from the tracker
func (t *IdempotencyTracker) Delete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.processed, key)
}

// Len returns the number of remembered keys, expired ones not yet swept included.
func (t *IdempotencyTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.processed)
}

// WithIdempotency wraps a handler so each key is handled successfully at
// most once. Concurrent deliveries of the same key wait for the in-flight
// attempt and share its result; a failed attempt leaves the key unmarked so
// a redelivery is handled again.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	tracker *IdempotencyTracker,
	keyExtractor KeyExtractor,
	handlerName string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e eventbus.Event) error {
		key := keyExtractor(e)
		if key == "" {
			return handler(ctx, e)
		}

		log := logger.With(
			"handler", handlerName,
			"event_type", e.Type(),
			"idempotency_key", key,
		)

		if tracker.Seen(key) {
			log.Info("🔁 [SKIP] Event already processed")
			return nil
		}

		_, err, _ := tracker.inflight.Do(key, func() (any, error) {
			if tracker.Seen(key) {
				return nil, nil
			}
			if err := handler(ctx, e); err != nil {
				return nil, err
			}
			tracker.Store(key)
			return nil, nil
		})
		return err
	}
}
