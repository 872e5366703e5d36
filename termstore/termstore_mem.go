package termstore

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/stewardbot/steward/keyword"
)

// MemTermStore keeps everything in process memory. Useful for tests and
// single-node deployments seeded from a JSON file.
type MemTermStore struct {
	lk     sync.RWMutex
	global map[string]bool
	groups map[int64]map[string]bool

	// published on ReloadGlobal; global mutations are invisible until then
	snapshot []string
}

func NewMemTermStore() *MemTermStore {
	return &MemTermStore{
		global: make(map[string]bool),
		groups: make(map[int64]map[string]bool),
	}
}

func (s *MemTermStore) GlobalTerms(ctx context.Context) []string {
	s.lk.RLock()
	defer s.lk.RUnlock()
	return s.snapshot
}

func (s *MemTermStore) GroupTerms(ctx context.Context, groupID int64) ([]string, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()
	return sortedTerms(s.groups[groupID]), nil
}

func (s *MemTermStore) AddTerm(ctx context.Context, groupID int64, term string) error {
	term = keyword.Normalize(term)
	if term == "" {
		return nil
	}
	s.lk.Lock()
	defer s.lk.Unlock()
	set, ok := s.groups[groupID]
	if !ok {
		set = make(map[string]bool)
		s.groups[groupID] = set
	}
	set[term] = true
	return nil
}

func (s *MemTermStore) RemoveTerm(ctx context.Context, groupID int64, term string) error {
	term = keyword.Normalize(term)
	s.lk.Lock()
	defer s.lk.Unlock()
	delete(s.groups[groupID], term)
	return nil
}

func (s *MemTermStore) AddGlobalTerm(ctx context.Context, term string) error {
	term = keyword.Normalize(term)
	if term == "" {
		return nil
	}
	s.lk.Lock()
	defer s.lk.Unlock()
	s.global[term] = true
	return nil
}

func (s *MemTermStore) RemoveGlobalTerm(ctx context.Context, term string) error {
	term = keyword.Normalize(term)
	s.lk.Lock()
	defer s.lk.Unlock()
	delete(s.global, term)
	return nil
}

func (s *MemTermStore) ReloadGlobal(ctx context.Context) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.snapshot = sortedTerms(s.global)
	return nil
}

// LoadFromFileJSON seeds the global list from a JSON file containing either
// a flat array of terms or a {"terms": [...]} object. The snapshot is
// refreshed after loading.
func (s *MemTermStore) LoadFromFileJSON(ctx context.Context, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var terms []string
	if err := json.Unmarshal(raw, &terms); err != nil {
		var obj struct {
			Terms []string `json:"terms"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return err
		}
		terms = obj.Terms
	}

	for _, t := range terms {
		if err := s.AddGlobalTerm(ctx, t); err != nil {
			return err
		}
	}
	return s.ReloadGlobal(ctx)
}

func sortedTerms(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
