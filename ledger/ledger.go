// Package ledger tracks per-(user, group) violation counts and the
// timestamp of the last warning sent, backing the escalation ladder.
//
// The durable store (redis) is authoritative. An in-process store exists
// only as a degraded-mode fallback when the durable store is unreachable;
// callers are told via a flag when they are operating on cache-only values.
package ledger

import (
	"context"
	"fmt"
	"time"
)

// Record is the durable state for one (user, group) pair. A zero Count and
// zero LastWarnedAt is the implicit state for pairs never seen before.
type Record struct {
	Count        int
	LastWarnedAt time.Time
}

type Store interface {
	Read(ctx context.Context, userID, groupID int64) (Record, error)
	// Increment adds one to the count and returns the new value. Not
	// atomic across concurrent writers for the same key; violation counts
	// are a soft escalation heuristic and last-write-wins is acceptable.
	Increment(ctx context.Context, userID, groupID int64) (int, error)
	// Reset zeroes the count. Called once, synchronously, after a removal
	// action is confirmed. The warn timestamp is left alone.
	Reset(ctx context.Context, userID, groupID int64) error
	MarkWarned(ctx context.Context, userID, groupID int64, at time.Time) error
}

func recordKey(userID, groupID int64) string {
	return fmt.Sprintf("%d/%d", groupID, userID)
}
