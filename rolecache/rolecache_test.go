package rolecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stewardbot/steward/platform"
)

func TestMemCacheRoundtrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	c := NewMemCache(10, time.Hour)

	role, err := c.GetRole(ctx, 7, 42)
	assert.NoError(err)
	assert.Equal(platform.Role(""), role)

	assert.NoError(c.SetRole(ctx, 7, 42, platform.RoleAdministrator))
	role, err = c.GetRole(ctx, 7, 42)
	assert.NoError(err)
	assert.Equal(platform.RoleAdministrator, role)
	assert.True(role.Privileged())

	// same user in another group is a separate entry
	role, err = c.GetRole(ctx, 8, 42)
	assert.NoError(err)
	assert.Equal(platform.Role(""), role)

	assert.NoError(c.Forget(ctx, 7, 42))
	role, err = c.GetRole(ctx, 7, 42)
	assert.NoError(err)
	assert.Equal(platform.Role(""), role)
}

func TestMemCacheExpiry(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	c := NewMemCache(10, 50*time.Millisecond)

	assert.NoError(c.SetRole(ctx, 7, 42, platform.RoleMember))
	time.Sleep(100 * time.Millisecond)
	role, err := c.GetRole(ctx, 7, 42)
	assert.NoError(err)
	assert.Equal(platform.Role(""), role)
}
