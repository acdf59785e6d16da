package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T, size int) (*MemoryCache, *time.Time) {
	t.Helper()
	now := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	mc := NewMemoryCache(WithMemoryMaxSize(size), WithMemoryCleanup(0))
	mc.now = func() time.Time { return now }
	t.Cleanup(func() { _ = mc.Close() })
	return mc, &now
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc, now := newTestMemory(t, 10)

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	*now = now.Add(2 * time.Minute)
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc, now := newTestMemory(t, 2)

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Hour))
	*now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Hour))
	*now = now.Add(time.Second)
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	*now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), time.Hour))

	assert.Equal(t, 2, mc.Len())
	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestMemory(t, 10)

	type payload struct {
		Ticker string  `json:"ticker"`
		Price  float64 `json:"price"`
	}
	require.NoError(t, SetJSON(ctx, mc, Key("analysis", "AAPL"), payload{Ticker: "AAPL", Price: 150}, time.Minute))

	got, err := GetJSON[payload](ctx, mc, "analysis:AAPL")
	require.NoError(t, err)
	assert.Equal(t, payload{Ticker: "AAPL", Price: 150}, got)

	_, err = GetJSON[payload](ctx, mc, "analysis:MSFT")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLayeredCacheFallsBackToRemote(t *testing.T) {
	ctx := context.Background()
	l1, _ := newTestMemory(t, 10)
	remote, _ := newTestMemory(t, 10)
	lc := NewLayeredCache(l1, remote)

	require.NoError(t, remote.Set(ctx, "k", []byte("remote"), time.Hour))
	got, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote"), got)

	// promoted into L1
	got, err = l1.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote"), got)

	require.NoError(t, lc.Delete(ctx, "k"))
	_, err = lc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
