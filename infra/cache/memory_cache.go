package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/fxpay/pkg/cache"
	"github.com/amirasaad/fxpay/pkg/domain"
)

// MemoryCache implements cache.RateCache in process memory.
// Expired entries are dropped when read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	snapshot  *domain.RateSnapshot
	expiresAt time.Time
}

var _ cache.RateCache = (*MemoryCache)(nil)

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, base string) (*domain.RateSnapshot, error) {
	c.mu.RLock()
	entry, ok := c.entries[base]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[base]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, base)
		}
		c.mu.Unlock()
		return nil, nil
	}
	return entry.snapshot, nil
}

func (c *MemoryCache) Set(_ context.Context, snap *domain.RateSnapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snap.Base] = cacheEntry{snapshot: snap, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, base string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, base)
	return nil
}
