package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

var errEmptyID = shared.Invalid("id is required")

const readTTL = 30 * 24 * time.Hour

// RedisReads stores read flags as one Redis set per user.
type RedisReads struct {
	client *redis.Client
}

// NewRedisReads returns a ReadStore backed by client.
func NewRedisReads(client *redis.Client) *RedisReads {
	return &RedisReads{client: client}
}

func readKey(userID int64) string {
	return fmt.Sprintf("feed:read:%d", userID)
}

// ReadIDs implements ReadStore.
func (r *RedisReads) ReadIDs(ctx context.Context, userID int64) (map[string]bool, error) {
	ids, err := r.client.SMembers(ctx, readKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// MarkRead implements ReadStore. The set expires after a month of inactivity.
func (r *RedisReads) MarkRead(ctx context.Context, userID int64, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	key := readKey(userID)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, key, members...)
		p.Expire(ctx, key, readTTL)
		return nil
	})
	return err
}

var _ ReadStore = (*RedisReads)(nil)
