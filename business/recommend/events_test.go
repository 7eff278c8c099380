package recommend

import (
	"context"
	"testing"

	"freshCart/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLiftsRecognizedMetadata(t *testing.T) {
	store := newFakeStore()
	recorder := NewRecorder(store, nil)

	res := recorder.Record(context.Background(), 5, 10, domain.ActionView, map[string]any{
		"session_id":  "abc-123",
		"device_type": "mobile",
		"source":      "search",
		"duration_ms": float64(4200),
		"experiment":  "homepage-v2",
	})
	require.True(t, res.OK)
	require.Len(t, store.events, 1)

	ev := store.events[0]
	assert.Equal(t, uint(5), ev.UserID)
	assert.Equal(t, uint64(10), ev.ProductID)
	assert.Equal(t, domain.ActionView, ev.ActionKind)
	assert.Equal(t, "abc-123", ev.SessionID)
	assert.Equal(t, "mobile", ev.DeviceType)
	assert.Equal(t, "search", ev.Source)
	assert.Equal(t, int64(4200), ev.DurationMs)

	// Unrecognized keys stay in the schemaless blob.
	require.NotNil(t, ev.Metadata)
	assert.Equal(t, "homepage-v2", ev.Metadata["experiment"])
	assert.NotContains(t, ev.Metadata, "session_id")
}

func TestRecordRejectsBadInput(t *testing.T) {
	store := newFakeStore()
	recorder := NewRecorder(store, nil)
	ctx := context.Background()

	res := recorder.Record(ctx, 0, 10, domain.ActionView, nil)
	assert.False(t, res.OK)

	res = recorder.Record(ctx, 5, 0, domain.ActionView, nil)
	assert.False(t, res.OK)

	res = recorder.Record(ctx, 5, 10, "hover", nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "unknown action kind")

	assert.Empty(t, store.events)
}

func TestRecordStoreFailureIsSoft(t *testing.T) {
	store := newFakeStore()
	store.failEvents = true
	recorder := NewRecorder(store, nil)

	res := recorder.Record(context.Background(), 5, 10, domain.ActionPurchase, nil)
	assert.False(t, res.OK)
	assert.Equal(t, "store unavailable", res.Reason)
}

func TestRecordInvalidatesCachedProfile(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.PreferenceProfile{UserID: 5}, 0))
	recorder := NewRecorder(store, cache)

	res := recorder.Record(ctx, 5, 10, domain.ActionView, nil)
	require.True(t, res.OK)

	assert.Equal(t, 1, cache.invalidations)
	cached, err := cache.Get(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, cached, "stale profile must be dropped after a new event")

	// A failed write leaves the cache alone.
	require.NoError(t, cache.Set(ctx, &domain.PreferenceProfile{UserID: 5}, 0))
	store.failEvents = true
	res = recorder.Record(ctx, 5, 10, domain.ActionView, nil)
	require.False(t, res.OK)
	assert.Equal(t, 1, cache.invalidations)
}
