package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
)

const cacheVersionKey = "roles:version"

// loadTimeout bounds a shared loader call, which outlives any single caller.
const loadTimeout = 5 * time.Second

// Cache is a versioned Redis read-through cache for role lookups. Writes bump
// the version so stale entries are never read again and simply expire.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	return ver, err
}

// Fetch returns the cached role for key or loads it. Keys are cached exactly as
// given: an id and a name that differ only in case may resolve to different
// roles. Concurrent misses for the same key share one loader call. Redis
// failures fall back to the loader.
func (c *Cache) Fetch(ctx context.Context, key string, loader func(context.Context) (rbac.Role, error)) (rbac.Role, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	ver, err := c.version(ctx)
	if err != nil {
		c.warn("role cache version", err)
		return loader(ctx)
	}
	cacheKey := fmt.Sprintf("roles:%d:%s", ver, key)

	if payload, err := c.client.Get(ctx, cacheKey).Bytes(); err == nil {
		var role rbac.Role
		if err := json.Unmarshal(payload, &role); err == nil {
			return role, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.warn("role cache get", err)
		return loader(ctx)
	}

	ch := c.group.DoChan(cacheKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		role, err := loader(loadCtx)
		if err != nil {
			return rbac.Role{}, err
		}
		if raw, err := json.Marshal(role); err == nil {
			if err := c.client.Set(loadCtx, cacheKey, raw, c.ttl).Err(); err != nil {
				c.warn("role cache set", err)
			}
		}
		return role, nil
	})
	select {
	case <-ctx.Done():
		return rbac.Role{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return rbac.Role{}, res.Err
		}
		return res.Val.(rbac.Role), nil
	}
}

// Bump invalidates every cached role.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func (c *Cache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, slog.Any("error", err))
	}
}
