// Package alerts implements recurring per-group announcements: a stored
// message plus an interval, dispatched whenever enough time has passed
// since the last send.
package alerts

import (
	"context"
	"time"
)

// Alert is one group's recurring announcement. A group has at most one;
// setting a new alert overwrites the old record.
type Alert struct {
	GroupID         int64 `gorm:"primarykey"`
	Message         string
	IntervalMinutes int64
	// epoch millis of the last successful send, 0 when never sent
	LastSentAt int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Due reports whether the alert should be sent now. A never-sent alert is
// immediately due; otherwise it is due once the full interval has elapsed,
// boundary included. The check is interval-since-last-sent, so slow ticks
// do not accumulate drift.
func (a *Alert) Due(now time.Time) bool {
	return now.UnixMilli()-a.LastSentAt >= a.IntervalMinutes*60_000
}

type Store interface {
	// Upsert creates or overwrites the group's alert.
	Upsert(ctx context.Context, alert *Alert) error
	Delete(ctx context.Context, groupID int64) error
	List(ctx context.Context) ([]Alert, error)
	// MarkSent records a successful dispatch so the alert is not
	// re-selected until the interval elapses again.
	MarkSent(ctx context.Context, groupID int64, now time.Time) error
}
