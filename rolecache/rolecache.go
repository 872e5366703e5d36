// Package rolecache memoizes member-role lookups so privileged-user
// checks do not hit the messaging platform on every message. Entries
// expire on a short TTL: a stale entry only delays how quickly a
// promotion or demotion is noticed, it never blocks moderation outright.
//
// A cache miss is returned as an empty Role, not an error.
package rolecache

import (
	"context"
	"fmt"
	"time"

	"github.com/stewardbot/steward/platform"
)

// DefaultTTL bounds how long a role change can go unnoticed.
var DefaultTTL = 5 * time.Minute

type Cache interface {
	GetRole(ctx context.Context, groupID, userID int64) (platform.Role, error)
	SetRole(ctx context.Context, groupID, userID int64, role platform.Role) error
	// Forget drops the cached role so the next lookup is authoritative.
	Forget(ctx context.Context, groupID, userID int64) error
}

func memberKey(groupID, userID int64) string {
	return fmt.Sprintf("%d/%d", groupID, userID)
}
