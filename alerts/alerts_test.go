package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testStores(t *testing.T) map[string]Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	gs, err := NewGormStore(db)
	require.NoError(t, err)
	return map[string]Store{
		"mem":  NewMemStore(),
		"gorm": gs,
	}
}

func TestAlertDue(t *testing.T) {
	assert := assert.New(t)

	base := time.UnixMilli(1700000000000)
	a := Alert{GroupID: 7, Message: "rules reminder", IntervalMinutes: 10, LastSentAt: base.UnixMilli()}

	// one millisecond short of the interval: not due
	assert.False(a.Due(base.Add(10*time.Minute - time.Millisecond)))
	// exactly on the boundary: due
	assert.True(a.Due(base.Add(10 * time.Minute)))
	assert.True(a.Due(base.Add(time.Hour)))

	// never sent: due immediately
	fresh := Alert{GroupID: 7, IntervalMinutes: 60}
	assert.True(fresh.Due(base))
}

func TestStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			require.NoError(t, s.Upsert(ctx, &Alert{GroupID: 7, Message: "old", IntervalMinutes: 10}))
			require.NoError(t, s.Upsert(ctx, &Alert{GroupID: 7, Message: "new", IntervalMinutes: 30}))

			all, err := s.List(ctx)
			assert.NoError(err)
			require.Len(t, all, 1)
			assert.Equal("new", all[0].Message)
			assert.Equal(int64(30), all[0].IntervalMinutes)
		})
	}
}

func TestStoreMarkSentAndDelete(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1700000000000)
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			require.NoError(t, s.Upsert(ctx, &Alert{GroupID: 7, Message: "hi", IntervalMinutes: 60}))
			require.NoError(t, s.MarkSent(ctx, 7, now))

			all, err := s.List(ctx)
			assert.NoError(err)
			require.Len(t, all, 1)
			assert.Equal(now.UnixMilli(), all[0].LastSentAt)
			assert.False(all[0].Due(now.Add(59 * time.Minute)))
			assert.True(all[0].Due(now.Add(time.Hour)))

			assert.NoError(s.Delete(ctx, 7))
			all, err = s.List(ctx)
			assert.NoError(err)
			assert.Empty(all)

			// marking a deleted alert is a no-op
			assert.NoError(s.MarkSent(ctx, 7, now))
		})
	}
}
