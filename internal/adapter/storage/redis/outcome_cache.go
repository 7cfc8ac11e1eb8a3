package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// OutcomeCache implements ports.OutcomeCache using Redis. Terminal
// transaction outcomes are kept with a TTL so a reconnecting client can
// fetch the result of a flow it dismissed or missed.
type OutcomeCache struct {
	client *goredis.Client
	prefix string
}

// NewOutcomeCache creates a new Redis-backed outcome cache.
func NewOutcomeCache(client *goredis.Client) *OutcomeCache {
	return &OutcomeCache{
		client: client,
		prefix: "outcome:",
	}
}

// Get retrieves a cached outcome by transaction id.
// Returns nil, nil if the key does not exist.
func (c *OutcomeCache) Get(ctx context.Context, txID string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+txID).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis outcome get: %w", err)
	}
	return val, nil
}

// Set stores an outcome with TTL.
func (c *OutcomeCache) Set(ctx context.Context, txID string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+txID, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis outcome set: %w", err)
	}
	return nil
}
