package termstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testStores(t *testing.T) map[string]TermStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	gs, err := NewGormTermStore(db)
	require.NoError(t, err)
	return map[string]TermStore{
		"mem":  NewMemTermStore(),
		"gorm": gs,
	}
}

func TestTermStoreIdempotence(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.NoError(s.AddTerm(ctx, 7, "  FuCk "))
			assert.NoError(s.AddTerm(ctx, 7, "fuck"))
			terms, err := s.GroupTerms(ctx, 7)
			assert.NoError(err)
			assert.Equal([]string{"fuck"}, terms)

			// removing an absent term is a no-op
			assert.NoError(s.RemoveTerm(ctx, 7, "missing"))
			assert.NoError(s.RemoveTerm(ctx, 7, "fuck"))
			terms, err = s.GroupTerms(ctx, 7)
			assert.NoError(err)
			assert.Empty(terms)
		})
	}
}

func TestGlobalSnapshotReload(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.NoError(s.AddGlobalTerm(ctx, "slur"))
			// mutation is not visible until an explicit reload
			assert.Empty(s.GlobalTerms(ctx))
			assert.NoError(s.ReloadGlobal(ctx))
			assert.Equal([]string{"slur"}, s.GlobalTerms(ctx))
		})
	}
}

func TestCombinedTerms(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.NoError(s.AddGlobalTerm(ctx, "slur"))
			assert.NoError(s.ReloadGlobal(ctx))
			assert.NoError(s.AddTerm(ctx, 7, "localslur"))
			assert.NoError(s.AddTerm(ctx, 7, "slur"))

			combined, err := CombinedTerms(ctx, s, 7)
			assert.NoError(err)
			assert.ElementsMatch([]string{"slur", "localslur"}, combined)

			// other groups only see the global list
			combined, err = CombinedTerms(ctx, s, 8)
			assert.NoError(err)
			assert.Equal([]string{"slur"}, combined)
		})
	}
}

func TestLoadFromFileJSON(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)

	p := t.TempDir() + "/terms.json"
	require.NoError(t, os.WriteFile(p, []byte(`["Alpha", "beta", "alpha"]`), 0644))

	s := NewMemTermStore()
	assert.NoError(s.LoadFromFileJSON(ctx, p))
	assert.Equal([]string{"alpha", "beta"}, s.GlobalTerms(ctx))
}
