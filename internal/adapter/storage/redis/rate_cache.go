package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"digital-payment-service/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// RateCache implements ports.RateCache: the hot path in front of the
// database-backed exchange-rate cache.
type RateCache struct {
	client *goredis.Client
	prefix string
}

// NewRateCache creates a new Redis-backed rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "fxrate:",
	}
}

func (c *RateCache) key(from, to string) string {
	return c.prefix + from + ":" + to
}

// Get retrieves a cached resolved rate for a pair.
// Returns nil, nil if the pair is not cached.
func (c *RateCache) Get(ctx context.Context, from, to string) (*domain.ResolvedRate, error) {
	val, err := c.client.Get(ctx, c.key(from, to)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rate get: %w", err)
	}

	var rate domain.ResolvedRate
	if err := json.Unmarshal(val, &rate); err != nil {
		return nil, fmt.Errorf("unmarshal cached rate: %w", err)
	}
	return &rate, nil
}

// Set stores a resolved rate with TTL.
func (c *RateCache) Set(ctx context.Context, from, to string, rate domain.ResolvedRate, ttl time.Duration) error {
	val, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("marshal rate: %w", err)
	}
	if err := c.client.Set(ctx, c.key(from, to), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis rate set: %w", err)
	}
	return nil
}
