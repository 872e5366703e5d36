package configstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&GroupConfig{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, groupID int64) (*GroupConfig, error) {
	var cfg GroupConfig
	err := s.db.WithContext(ctx).First(&cfg, "group_id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = *DefaultGroupConfig(groupID)
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *GormStore) Put(ctx context.Context, cfg *GroupConfig) error {
	return s.db.WithContext(ctx).Save(cfg).Error
}
