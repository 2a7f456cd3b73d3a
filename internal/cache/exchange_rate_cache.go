package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
)

// KeyValueStore is the subset of RedisClient the rate cache needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// ExchangeRateCache keeps the newest rate per pair in Redis in front of the
// SQL store. Freshness is decided by the rate's FetchedAt, not by the key TTL;
// the TTL only bounds how long a pair lingers after it stops being used.
// Redis failures degrade to the underlying store.
//
// Save overwrites the cached entry. A read-through fill only writes an absent
// key, so a row read from the store before a concurrent Save cannot replace
// the newer rate that Save cached.
type ExchangeRateCache struct {
	kv   KeyValueStore
	next repository.ExchangeRateRepositoryInterface
	ttl  time.Duration
}

func NewExchangeRateCache(kv KeyValueStore, next repository.ExchangeRateRepositoryInterface, ttl time.Duration) *ExchangeRateCache {
	return &ExchangeRateCache{kv: kv, next: next, ttl: ttl}
}

// rateKey returns the Redis key for a currency pair.
func rateKey(from, to string) string {
	return fmt.Sprintf("fx:rate:%s:%s", from, to)
}

func (c *ExchangeRateCache) Latest(ctx context.Context, from, to string) (*model.ExchangeRate, error) {
	key := rateKey(from, to)

	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		var rate model.ExchangeRate
		if jsonErr := json.Unmarshal([]byte(raw), &rate); jsonErr == nil {
			return &rate, nil
		}
		logger.FromContext(ctx).Warn("discarding undecodable cached rate", "key", key)
		_ = c.kv.Delete(ctx, key)
	case !errors.Is(err, redis.Nil):
		logger.FromContext(ctx).Warn("redis read failed, using database", "key", key, "error", err)
	}

	rate, err := c.next.Latest(ctx, from, to)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, rate)
	return rate, nil
}

// History reads the underlying store; only the newest rate is cached.
func (c *ExchangeRateCache) History(ctx context.Context, from, to string, since time.Time) ([]model.ExchangeRate, error) {
	return c.next.History(ctx, from, to, since)
}

func (c *ExchangeRateCache) Save(ctx context.Context, rate *model.ExchangeRate) error {
	if err := c.next.Save(ctx, rate); err != nil {
		return err
	}
	c.put(ctx, rate)
	return nil
}

// DeleteOlderThan prunes the underlying store. Cached keys age out by TTL.
func (c *ExchangeRateCache) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return c.next.DeleteOlderThan(ctx, cutoff)
}

func (c *ExchangeRateCache) put(ctx context.Context, rate *model.ExchangeRate) {
	data, err := json.Marshal(rate)
	if err != nil {
		return
	}
	key := rateKey(rate.FromCurrency, rate.ToCurrency)
	if err := c.kv.Set(ctx, key, string(data), c.ttl); err != nil {
		logger.FromContext(ctx).Warn("redis write failed", "key", key, "error", err)
	}
}

// fill caches rate unless the key already holds a value.
func (c *ExchangeRateCache) fill(ctx context.Context, rate *model.ExchangeRate) {
	data, err := json.Marshal(rate)
	if err != nil {
		return
	}
	key := rateKey(rate.FromCurrency, rate.ToCurrency)
	stored, err := c.kv.SetNX(ctx, key, string(data), c.ttl)
	if err != nil {
		logger.FromContext(ctx).Warn("redis write failed", "key", key, "error", err)
		return
	}
	if !stored {
		logger.FromContext(ctx).Debug("kept newer cached rate", "key", key)
	}
}
