package ledger

import (
	"context"
	"sync"
	"time"
)

// MemStore holds records in process memory. Used directly in tests, and as
// the degraded-mode fallback behind Ledger in production.
type MemStore struct {
	lk      sync.Mutex
	records map[string]Record
}

func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]Record),
	}
}

func (s *MemStore) Read(ctx context.Context, userID, groupID int64) (Record, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.records[recordKey(userID, groupID)], nil
}

func (s *MemStore) Increment(ctx context.Context, userID, groupID int64) (int, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	k := recordKey(userID, groupID)
	rec := s.records[k]
	rec.Count++
	s.records[k] = rec
	return rec.Count, nil
}

func (s *MemStore) Reset(ctx context.Context, userID, groupID int64) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	k := recordKey(userID, groupID)
	rec := s.records[k]
	rec.Count = 0
	s.records[k] = rec
	return nil
}

func (s *MemStore) MarkWarned(ctx context.Context, userID, groupID int64, at time.Time) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	k := recordKey(userID, groupID)
	rec := s.records[k]
	rec.LastWarnedAt = at
	s.records[k] = rec
	return nil
}

// Forget drops a cached record so the next read goes back to zero state.
func (s *MemStore) Forget(userID, groupID int64) {
	s.lk.Lock()
	defer s.lk.Unlock()
	delete(s.records, recordKey(userID, groupID))
}
