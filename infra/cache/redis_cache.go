package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/fxpay/pkg/cache"
	"github.com/amirasaad/fxpay/pkg/domain"
	"github.com/redis/go-redis/v9"
)

// RedisRateCache implements cache.RateCache using Redis.
type RedisRateCache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

var _ cache.RateCache = (*RedisRateCache)(nil)

// NewRedisRateCache connects to the Redis server at url
// (redis://[:password@]host:port/db).
func NewRedisRateCache(url, prefix string, logger *slog.Logger) (*RedisRateCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisRateCacheWithClient(redis.NewClient(opt), prefix, logger), nil
}

// NewRedisRateCacheWithClient wraps an existing client.
func NewRedisRateCacheWithClient(
	client redis.UniversalClient,
	prefix string,
	logger *slog.Logger,
) *RedisRateCache {
	return &RedisRateCache{client: client, prefix: prefix, logger: logger}
}

// Ping checks connectivity.
func (r *RedisRateCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *RedisRateCache) Close() error {
	return r.client.Close()
}

func (r *RedisRateCache) key(base string) string {
	return r.prefix + base
}

func (r *RedisRateCache) Get(ctx context.Context, base string) (*domain.RateSnapshot, error) {
	val, err := r.client.Get(ctx, r.key(base)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "base", base)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "base", base, "error", err)
		return nil, err
	}
	var snap domain.RateSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		r.logger.Error("Redis cache unmarshal error", "base", base, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis cache hit", "base", base, "rates", len(snap.Rates))
	return &snap, nil
}

func (r *RedisRateCache) Set(ctx context.Context, snap *domain.RateSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(snap.Base), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "base", snap.Base, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "base", snap.Base, "ttl", ttl)
	return nil
}

func (r *RedisRateCache) Delete(ctx context.Context, base string) error {
	return r.client.Del(ctx, r.key(base)).Err()
}
