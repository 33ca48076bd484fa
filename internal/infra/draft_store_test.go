package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"signaldesk.com/internal/catalog"
	"signaldesk.com/internal/config"
	"signaldesk.com/internal/domain"
	"signaldesk.com/internal/model"
)

func sampleDraft(id string) *model.Draft {
	d := model.NewDraft(id)
	es, _ := catalog.Lookup("ES")
	d.Symbol, d.AssetName, d.Contract = es.Symbol, es.Name, &es
	d.EntryPrice = 5000
	d.StopLoss = 8
	pct := 4.0
	d.Targets = []model.TakeProfitTarget{{Magnitude: 16, Percentage: &pct}, {Magnitude: 24}}
	d.Description = "breakout"
	d.CreatedAt = d.CreatedAt.Truncate(time.Millisecond)
	d.UpdatedAt = d.CreatedAt
	return &d
}

func TestMemoryDraftStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore(time.Hour)

	d := sampleDraft("d1")
	require.NoError(t, store.Save(ctx, d))

	// caller mutations after Save must not leak into the store
	d.Targets[0].Magnitude = 999

	loaded, err := store.Load(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 16.0, loaded.Targets[0].Magnitude)
	assert.Equal(t, "ES", loaded.Contract.Symbol)

	require.NoError(t, store.Delete(ctx, "d1"))
	_, err = store.Load(ctx, "d1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemoryDraftStore_ExpiryAndSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore(time.Minute)
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, sampleDraft("old")))
	now = now.Add(45 * time.Second)
	require.NoError(t, store.Save(ctx, sampleDraft("fresh")))

	now = now.Add(30 * time.Second)
	_, err := store.Load(ctx, "old")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "expired drafts are not returned")

	_, err = store.Load(ctx, "fresh")
	require.NoError(t, err)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	// Load slid the expiry of "fresh" forward
	now = now.Add(50 * time.Second)
	assert.Equal(t, 0, store.Sweep())
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisDraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisDraftStore(rdb, ttl), mr
}

func TestRedisDraftStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 30*time.Minute)

	d := sampleDraft("r1")
	require.NoError(t, store.Save(ctx, d))
	assert.True(t, mr.Exists("signal:draft:r1"))
	assert.Equal(t, 30*time.Minute, mr.TTL("signal:draft:r1"))

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, d.ID, loaded.ID)
	assert.Equal(t, d.Symbol, loaded.Symbol)
	require.NotNil(t, loaded.Contract)
	assert.Equal(t, 12.5, loaded.Contract.TickValue)
	require.Len(t, loaded.Targets, 2)
	require.NotNil(t, loaded.Targets[0].Percentage)
	assert.Equal(t, 4.0, *loaded.Targets[0].Percentage)
	assert.Nil(t, loaded.Targets[1].Percentage)
	assert.True(t, d.CreatedAt.Equal(loaded.CreatedAt))
}

func TestRedisDraftStore_ExpiryAndDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	require.NoError(t, store.Save(ctx, sampleDraft("r1")))
	require.NoError(t, store.Save(ctx, sampleDraft("r2")))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "r1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, store.Save(ctx, sampleDraft("r3")))
	require.NoError(t, store.Delete(ctx, "r3"))
	_, err = store.Load(ctx, "r3")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRedisDraftStore_ConnectionError(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)
	mr.Close()

	err := store.Save(ctx, sampleDraft("r1"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
