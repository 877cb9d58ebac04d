// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/shared/tradingday"
)

// CachingMarketRepository decorates a MarketRepository with Redis caching.
// Empty series and errors are never cached.
type CachingMarketRepository struct {
	inner     usecase.MarketRepository
	rdb       *redis.Client
	ttl       time.Duration // 0 の場合は次の更新時刻までを都度計算する
	namespace string
	now       func() time.Time
}

var _ usecase.MarketRepository = (*CachingMarketRepository)(nil)

// NewCachingMarketRepository decorates a MarketRepository with Redis caching.
// If ttl is 0, entries expire at the next daily refresh (see TimeUntilNextRefresh).
// If namespace is empty, it uses "market".
func NewCachingMarketRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MarketRepository, namespace string) *CachingMarketRepository {
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "market"
	}
	return &CachingMarketRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// FetchDaily retrieves bars, checking the cache first then falling back to the provider.
func (c *CachingMarketRepository) FetchDaily(ctx context.Context, ticker string, start, end time.Time) (entity.Series, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FetchDaily(ctx, ticker, start, end)
	}

	key := c.cacheKey(ticker, start, end)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Series
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to provider
	out, err := c.inner.FetchDaily(ctx, ticker, start, end)
	if err != nil {
		return entity.Series{}, err
	}
	if len(out.Bars) == 0 {
		return out, nil
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.expiry()).Err()
	}
	return out, nil
}

// Invalidate deletes every cached range of the ticker.
func (c *CachingMarketRepository) Invalidate(ctx context.Context, ticker string) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.cacheKeyPrefix(ticker)+"*")
}

func (c *CachingMarketRepository) expiry() time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return TimeUntilNextRefresh(c.now())
}

// cacheKey generates a cache key for a specific range.
func (c *CachingMarketRepository) cacheKey(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s%s:%s", c.cacheKeyPrefix(ticker), tradingday.Key(start), tradingday.Key(end))
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingMarketRepository) cacheKeyPrefix(ticker string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(ticker))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingMarketRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
