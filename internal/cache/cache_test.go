package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

var (
	jan1 = time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	jun1 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func sampleBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: jan1.AddDate(0, 0, i), Close: float64(100 + i), Volume: 10}
	}
	return bars
}

func TestNewKey(t *testing.T) {
	k := NewKey(" aapl ", jan1, jun1)
	assert.Equal(t, "AAPL", k.Symbol)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), k.Start)
	assert.Equal(t, "AAPL:2024-01-01:2024-06-01", k.String())
	assert.Equal(t, k, NewKey("AAPL", jan1.Add(3*time.Hour), jun1))
}

func TestMemoryStore_GetSetCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	key := NewKey("AAPL", jan1, jun1)

	_, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	bars := sampleBars(3)
	require.NoError(t, s.Set(ctx, key, bars))
	bars[0].Close = -1

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got[0].Close, "store must not alias the caller's slice")

	got[1].Close = -1
	again, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 101.0, again[1].Close, "callers must not alias the stored slice")

	require.NoError(t, s.Delete(ctx, key))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithMaxEntries(2))
	a := NewKey("A", jan1, jun1)
	b := NewKey("B", jan1, jun1)
	c := NewKey("C", jan1, jun1)

	require.NoError(t, s.Set(ctx, a, sampleBars(1)))
	require.NoError(t, s.Set(ctx, b, sampleBars(1)))
	_, err := s.Get(ctx, a)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, c, sampleBars(1)))

	assert.Equal(t, 2, s.Len())
	_, err = s.Get(ctx, b)
	assert.ErrorIs(t, err, ErrCacheMiss, "b was least recently used")
	_, err = s.Get(ctx, a)
	assert.NoError(t, err)
	_, err = s.Get(ctx, c)
	assert.NoError(t, err)
}

func TestMemoryStore_UnboundedByDefault(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 50; i++ {
		require.NoError(t, s.Set(ctx, NewKey("S", jan1.AddDate(0, 0, i), jun1), sampleBars(1)))
	}
	assert.Equal(t, 50, s.Len())
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := jan1
	s := NewMemoryStore(WithTTL(time.Minute))
	s.now = func() time.Time { return now }
	key := NewKey("AAPL", jan1, jun1)

	require.NoError(t, s.Set(ctx, key, sampleBars(2)))
	_, err := s.Get(ctx, key)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLayeredStore(t *testing.T) {
	ctx := context.Background()
	l1 := NewMemoryStore()
	l2 := NewMemoryStore()
	s := NewLayeredStore(l1, l2)
	key := NewKey("MSFT", jan1, jun1)

	require.NoError(t, l2.Set(ctx, key, sampleBars(4)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, 1, l1.Len(), "read-through populates L1")

	other := NewKey("IBM", jan1, jun1)
	require.NoError(t, s.Set(ctx, other, sampleBars(2)))
	assert.Equal(t, 2, l2.Len())

	require.NoError(t, s.Delete(ctx, other))
	_, err = l2.Get(ctx, other)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: "stocklens-test", TTL: time.Minute})
	require.NoError(t, err)
	defer s.Close()

	key := NewKey("AAPL", jan1, jun1)
	require.NoError(t, s.Set(ctx, key, sampleBars(3)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 102.0, got[2].Close)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
