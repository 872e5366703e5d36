package alerts

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Alert{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Upsert(ctx context.Context, alert *Alert) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}},
			UpdateAll: true,
		}).
		Create(alert).Error
}

func (s *GormStore) Delete(ctx context.Context, groupID int64) error {
	return s.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&Alert{}).Error
}

func (s *GormStore) List(ctx context.Context) ([]Alert, error) {
	var out []Alert
	if err := s.db.WithContext(ctx).Order("group_id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) MarkSent(ctx context.Context, groupID int64, now time.Time) error {
	return s.db.WithContext(ctx).Model(&Alert{}).
		Where("group_id = ?", groupID).
		Update("last_sent_at", now.UnixMilli()).Error
}
