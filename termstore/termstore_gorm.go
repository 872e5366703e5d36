package termstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stewardbot/steward/keyword"
)

// GroupID zero marks a row as belonging to the global list.
const globalGroupID int64 = 0

type Term struct {
	ID        uint   `gorm:"primarykey"`
	GroupID   int64  `gorm:"index:idx_term_group_value,unique"`
	Value     string `gorm:"index:idx_term_group_value,unique"`
	CreatedAt time.Time
}

// GormTermStore persists terms in a relational table, one row per
// (group, term). The global list is cached as an in-memory snapshot and
// only re-read on ReloadGlobal.
type GormTermStore struct {
	db *gorm.DB

	lk       sync.RWMutex
	snapshot []string
}

func NewGormTermStore(db *gorm.DB) (*GormTermStore, error) {
	if err := db.AutoMigrate(&Term{}); err != nil {
		return nil, err
	}
	s := &GormTermStore{db: db}
	if err := s.ReloadGlobal(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GormTermStore) GlobalTerms(ctx context.Context) []string {
	s.lk.RLock()
	defer s.lk.RUnlock()
	return s.snapshot
}

func (s *GormTermStore) GroupTerms(ctx context.Context, groupID int64) ([]string, error) {
	var values []string
	err := s.db.WithContext(ctx).Model(&Term{}).
		Where("group_id = ?", groupID).
		Order("value").
		Pluck("value", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (s *GormTermStore) AddTerm(ctx context.Context, groupID int64, term string) error {
	return s.upsert(ctx, groupID, term)
}

func (s *GormTermStore) RemoveTerm(ctx context.Context, groupID int64, term string) error {
	return s.remove(ctx, groupID, term)
}

func (s *GormTermStore) AddGlobalTerm(ctx context.Context, term string) error {
	return s.upsert(ctx, globalGroupID, term)
}

func (s *GormTermStore) RemoveGlobalTerm(ctx context.Context, term string) error {
	return s.remove(ctx, globalGroupID, term)
}

func (s *GormTermStore) ReloadGlobal(ctx context.Context) error {
	var values []string
	err := s.db.WithContext(ctx).Model(&Term{}).
		Where("group_id = ?", globalGroupID).
		Order("value").
		Pluck("value", &values).Error
	if err != nil {
		return err
	}
	s.lk.Lock()
	s.snapshot = values
	s.lk.Unlock()
	return nil
}

func (s *GormTermStore) upsert(ctx context.Context, groupID int64, term string) error {
	term = keyword.Normalize(term)
	if term == "" {
		return nil
	}
	// duplicate adds are a no-op, not an error
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Term{GroupID: groupID, Value: term}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (s *GormTermStore) remove(ctx context.Context, groupID int64, term string) error {
	term = keyword.Normalize(term)
	return s.db.WithContext(ctx).
		Where("group_id = ? AND value = ?", groupID, term).
		Delete(&Term{}).Error
}
