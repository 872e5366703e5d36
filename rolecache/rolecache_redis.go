package rolecache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"

	"github.com/stewardbot/steward/platform"
)

// RedisCache shares roles across instances through redis, with a small
// local TinyLFU layer so hot lookups stay in process.
type RedisCache struct {
	data *cache.Cache
	ttl  time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{
		data: cache.New(&cache.Options{
			Redis:      rdb,
			LocalCache: cache.NewTinyLFU(50_000, ttl),
		}),
		ttl: ttl,
	}, nil
}

func redisRoleKey(groupID, userID int64) string {
	return "member-role/" + memberKey(groupID, userID)
}

func (c *RedisCache) GetRole(ctx context.Context, groupID, userID int64) (platform.Role, error) {
	var val string
	err := c.data.Get(ctx, redisRoleKey(groupID, userID), &val)
	if err == cache.ErrCacheMiss {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return platform.Role(val), nil
}

func (c *RedisCache) SetRole(ctx context.Context, groupID, userID int64, role platform.Role) error {
	return c.data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   redisRoleKey(groupID, userID),
		Value: string(role),
		TTL:   c.ttl,
	})
}

func (c *RedisCache) Forget(ctx context.Context, groupID, userID int64) error {
	err := c.data.Delete(ctx, redisRoleKey(groupID, userID))
	if err == cache.ErrCacheMiss {
		return nil
	}
	return err
}
