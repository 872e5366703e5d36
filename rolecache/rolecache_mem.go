package rolecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/stewardbot/steward/platform"
)

// MemCache holds roles in an in-process LRU with per-entry expiry. Role
// entries are tiny, so capacity is bounded by member count rather than
// memory concerns.
type MemCache struct {
	data *expirable.LRU[string, platform.Role]
}

func NewMemCache(capacity int, ttl time.Duration) *MemCache {
	return &MemCache{
		data: expirable.NewLRU[string, platform.Role](capacity, nil, ttl),
	}
}

func (c *MemCache) GetRole(ctx context.Context, groupID, userID int64) (platform.Role, error) {
	role, ok := c.data.Get(memberKey(groupID, userID))
	if !ok {
		return "", nil
	}
	return role, nil
}

func (c *MemCache) SetRole(ctx context.Context, groupID, userID int64, role platform.Role) error {
	c.data.Add(memberKey(groupID, userID), role)
	return nil
}

func (c *MemCache) Forget(ctx context.Context, groupID, userID int64) error {
	c.data.Remove(memberKey(groupID, userID))
	return nil
}
