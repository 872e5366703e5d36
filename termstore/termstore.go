// Package termstore manages the denylist terms consulted by moderation:
// one global list shared by every group, plus an additive per-group list.
//
// The global list is treated as an immutable snapshot, refreshed only on an
// explicit ReloadGlobal call; per-group lists are read through to the
// backing store on every lookup. Merging happens at lookup time so there is
// no combined cache to go stale.
package termstore

import (
	"context"

	"github.com/stewardbot/steward/keyword"
)

type TermStore interface {
	// GlobalTerms returns the current global snapshot. Never errors; the
	// snapshot is whatever the last successful ReloadGlobal produced.
	GlobalTerms(ctx context.Context) []string
	GroupTerms(ctx context.Context, groupID int64) ([]string, error)
	// AddTerm and RemoveTerm normalize the term first. Adding a term that
	// is already present, or removing one that is absent, is a no-op.
	AddTerm(ctx context.Context, groupID int64, term string) error
	RemoveTerm(ctx context.Context, groupID int64, term string) error
	AddGlobalTerm(ctx context.Context, term string) error
	RemoveGlobalTerm(ctx context.Context, term string) error
	// ReloadGlobal swaps in a fresh global snapshot from the backing store.
	ReloadGlobal(ctx context.Context) error
}

// CombinedTerms merges the global snapshot with the group's own list.
func CombinedTerms(ctx context.Context, s TermStore, groupID int64) ([]string, error) {
	group, err := s.GroupTerms(ctx, groupID)
	if err != nil {
		return nil, err
	}
	global := s.GlobalTerms(ctx)
	seen := make(map[string]bool, len(global)+len(group))
	out := make([]string, 0, len(global)+len(group))
	for _, t := range append(append([]string{}, global...), group...) {
		t = keyword.Normalize(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}
