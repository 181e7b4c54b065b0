package reports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryKey = "reports:summary"

// Cache keeps the last computed summary in Redis for a short TTL. A nil
// Cache or client always computes.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) fetch(ctx context.Context, key string, dest *Summary, loader func(context.Context) (*Summary, error)) error {
	if c == nil || c.client == nil || c.ttl <= 0 {
		s, err := loader(ctx)
		if err != nil {
			return err
		}
		*dest = *s
		return nil
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	s, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	*dest = *s
	return nil
}

// Invalidate drops the cached summary.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, summaryKey).Err()
}
