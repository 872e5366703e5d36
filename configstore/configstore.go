// Package configstore holds per-group moderation policy: which content
// types are screened for a given group.
//
// Configs are created lazily: the first read for an unknown group returns
// the default policy (all screening disabled, a group opts in via admin
// toggles). Configs are only ever overwritten, never deleted.
package configstore

import (
	"context"
	"time"
)

type GroupConfig struct {
	GroupID      int64 `gorm:"primarykey"`
	TextEnabled  bool
	ImageEnabled bool
	VideoEnabled bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultGroupConfig is the lazily-created policy for a group never seen
// before: no moderation until an admin turns it on.
func DefaultGroupConfig(groupID int64) *GroupConfig {
	return &GroupConfig{GroupID: groupID}
}

type Store interface {
	// Get never reports absence; unknown groups yield the default policy.
	Get(ctx context.Context, groupID int64) (*GroupConfig, error)
	Put(ctx context.Context, cfg *GroupConfig) error
}
