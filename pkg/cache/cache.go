package cache

import (
	"context"
	"time"

	"github.com/amirasaad/fxpay/pkg/domain"
)

// RateCache stores rate snapshots keyed by base currency.
// Get returns (nil, nil) on a miss.
type RateCache interface {
	Get(ctx context.Context, base string) (*domain.RateSnapshot, error)
	Set(ctx context.Context, snapshot *domain.RateSnapshot, ttl time.Duration) error
	Delete(ctx context.Context, base string) error
}
