package recommend

import (
	"context"
	"testing"
	"time"

	"freshCart/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildDerivesCategoriesPriceBandAndStyle(t *testing.T) {
	store := newFakeStore()
	now := time.Now()

	// Six categories; only the five most frequent survive.
	pid := uint64(1)
	for cat := uint64(1); cat <= 6; cat++ {
		hits := int(7 - cat) // cat 1 touched 6 times, cat 6 once
		for i := 0; i < hits; i++ {
			store.addProduct(domain.Product{ID: pid, CategoryID: cat, NormalPrice: float64(10 * cat), Quantity: 5})
			store.addEvent(3, pid, domain.ActionView, now.Add(-time.Duration(pid)*time.Minute))
			pid++
		}
	}

	builder := NewProfileBuilder(store, store, store, nil, 0, 0)

	profile, err := builder.Rebuild(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, []uint64(profile.PreferredCategories))
	require.True(t, profile.HasPriceRange())
	assert.Equal(t, 10.0, *profile.PriceMin)
	assert.Equal(t, 60.0, *profile.PriceMax)
	assert.Equal(t, domain.StyleExplorer, profile.ShoppingStyle)
}

func TestRebuildEmptyHistory(t *testing.T) {
	store := newFakeStore()
	builder := NewProfileBuilder(store, store, store, nil, 0, 0)

	profile, err := builder.Rebuild(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.False(t, profile.HasSignal())
	assert.False(t, profile.HasPriceRange())
	assert.Equal(t, domain.StyleUnknown, profile.ShoppingStyle)
}

func TestRebuildIsDeterministic(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.addProduct(domain.Product{ID: 1, CategoryID: 2, NormalPrice: 5, Quantity: 5})
	store.addProduct(domain.Product{ID: 2, CategoryID: 4, NormalPrice: 9, Quantity: 5})
	store.addEvent(3, 1, domain.ActionView, now.Add(-time.Hour))
	store.addEvent(3, 2, domain.ActionView, now.Add(-time.Minute))

	builder := NewProfileBuilder(store, store, store, nil, 0, 0)

	first, err := builder.Rebuild(context.Background(), 3)
	require.NoError(t, err)
	second, err := builder.Rebuild(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, []uint64(first.PreferredCategories), []uint64(second.PreferredCategories))
	assert.Equal(t, *first.PriceMin, *second.PriceMin)
	assert.Equal(t, *first.PriceMax, *second.PriceMax)
	assert.Equal(t, first.ShoppingStyle, second.ShoppingStyle)

	// Equal-count categories tie-break on id ascending.
	assert.Equal(t, []uint64{2, 4}, []uint64(first.PreferredCategories))
}

func TestBargainHunterStyle(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.addProduct(domain.Product{ID: 1, CategoryID: 1, NormalPrice: 10, SalePrice: 6, Quantity: 5})
	store.addProduct(domain.Product{ID: 2, CategoryID: 2, NormalPrice: 10, SalePrice: 7, Quantity: 5})
	store.addProduct(domain.Product{ID: 3, CategoryID: 3, NormalPrice: 10, Quantity: 5})
	store.addEvent(3, 1, domain.ActionView, now.Add(-3*time.Minute))
	store.addEvent(3, 2, domain.ActionView, now.Add(-2*time.Minute))
	store.addEvent(3, 3, domain.ActionView, now.Add(-1*time.Minute))

	builder := NewProfileBuilder(store, store, store, nil, 0, 0)

	profile, err := builder.Rebuild(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StyleBargainHunter, profile.ShoppingStyle)
}

func TestGetOrBuildCachesAfterRebuild(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	now := time.Now()
	store.addProduct(domain.Product{ID: 1, CategoryID: 2, NormalPrice: 5, Quantity: 5})
	store.addEvent(3, 1, domain.ActionView, now)

	builder := NewProfileBuilder(store, store, store, cache, time.Minute, 50)

	first, err := builder.GetOrBuild(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, store.profileReads)
	assert.GreaterOrEqual(t, cache.sets, 1)

	// Second lookup is served from the cache without touching the store.
	second, err := builder.GetOrBuild(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 1, store.profileReads)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, []uint64(first.PreferredCategories), []uint64(second.PreferredCategories))
}
