package configstore

import (
	"context"
	"sync"
)

type MemStore struct {
	lk      sync.Mutex
	configs map[int64]GroupConfig
}

func NewMemStore() *MemStore {
	return &MemStore{
		configs: make(map[int64]GroupConfig),
	}
}

func (s *MemStore) Get(ctx context.Context, groupID int64) (*GroupConfig, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	cfg, ok := s.configs[groupID]
	if !ok {
		cfg = *DefaultGroupConfig(groupID)
		s.configs[groupID] = cfg
	}
	out := cfg
	return &out, nil
}

func (s *MemStore) Put(ctx context.Context, cfg *GroupConfig) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.configs[cfg.GroupID] = *cfg
	return nil
}
