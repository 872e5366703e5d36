package ledger

import (
	"context"
	"log/slog"
	"time"
)

// Ledger wraps a durable store with an in-process fallback. The durable
// value wins whenever the durable store is reachable; after a successful
// durable access the cached record for that key is dropped rather than
// merged, so divergent cache-only counts never leak back in.
type Ledger struct {
	Durable Store
	Cache   *MemStore
	Logger  *slog.Logger
}

func NewLedger(durable Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		Durable: durable,
		Cache:   NewMemStore(),
		Logger:  logger,
	}
}

// Increment returns the new count, plus a degraded flag which is true when
// the durable store was unreachable and the count came from the in-process
// cache only.
func (l *Ledger) Increment(ctx context.Context, userID, groupID int64) (int, bool, error) {
	n, err := l.Durable.Increment(ctx, userID, groupID)
	if err == nil {
		l.Cache.Forget(userID, groupID)
		return n, false, nil
	}
	l.Logger.Warn("violation store unreachable, using in-process count", "err", err, "group", groupID, "user", userID)
	n, cerr := l.Cache.Increment(ctx, userID, groupID)
	return n, true, cerr
}

func (l *Ledger) Read(ctx context.Context, userID, groupID int64) (Record, bool, error) {
	rec, err := l.Durable.Read(ctx, userID, groupID)
	if err == nil {
		l.Cache.Forget(userID, groupID)
		return rec, false, nil
	}
	l.Logger.Warn("violation store unreachable, using in-process record", "err", err, "group", groupID, "user", userID)
	rec, cerr := l.Cache.Read(ctx, userID, groupID)
	return rec, true, cerr
}

// Reset applies to both stores so a stale cached count can not resurface
// after a removal.
func (l *Ledger) Reset(ctx context.Context, userID, groupID int64) error {
	if cerr := l.Cache.Reset(ctx, userID, groupID); cerr != nil {
		return cerr
	}
	if err := l.Durable.Reset(ctx, userID, groupID); err != nil {
		l.Logger.Warn("violation store unreachable, reset applied to in-process record only", "err", err, "group", groupID, "user", userID)
		return nil
	}
	return nil
}

func (l *Ledger) MarkWarned(ctx context.Context, userID, groupID int64, at time.Time) error {
	if cerr := l.Cache.MarkWarned(ctx, userID, groupID, at); cerr != nil {
		return cerr
	}
	if err := l.Durable.MarkWarned(ctx, userID, groupID, at); err != nil {
		l.Logger.Warn("violation store unreachable, warn timestamp cached only", "err", err, "group", groupID, "user", userID)
	}
	return nil
}
