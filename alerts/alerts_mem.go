package alerts

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemStore struct {
	lk     sync.Mutex
	alerts map[int64]Alert
}

func NewMemStore() *MemStore {
	return &MemStore{
		alerts: make(map[int64]Alert),
	}
}

func (s *MemStore) Upsert(ctx context.Context, alert *Alert) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.alerts[alert.GroupID] = *alert
	return nil
}

func (s *MemStore) Delete(ctx context.Context, groupID int64) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	delete(s.alerts, groupID)
	return nil
}

func (s *MemStore) List(ctx context.Context) ([]Alert, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, nil
}

func (s *MemStore) MarkSent(ctx context.Context, groupID int64, now time.Time) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	a, ok := s.alerts[groupID]
	if !ok {
		return nil
	}
	a.LastSentAt = now.UnixMilli()
	s.alerts[groupID] = a
	return nil
}
