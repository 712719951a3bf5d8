package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethpandaops/aerosense/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	return testutil.NewMiniredisClient(t)
}

func TestRedisStore_GetSet(t *testing.T) {
	_, client := setupTestRedis(t)

	store := NewRedisStore(client, "aerosense")
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	expiresAt := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	err = store.Set(ctx, "plot:abc", Entry{Value: plotResult{Rows: 3}, ExpiresAt: expiresAt}, time.Hour)
	require.NoError(t, err)

	raw, err := client.Get(ctx, "aerosense:cache:plot:abc").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"rows":3`)

	entry, found, err := store.Get(ctx, "plot:abc")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, expiresAt.Equal(entry.ExpiresAt))
	assert.JSONEq(t, `{"rows":3}`, string(entry.Value.(json.RawMessage)))
}

func TestRedisStore_NativeExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)

	store := NewRedisStore(client, "aerosense")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", Entry{Value: 1}, time.Minute))
	require.NoError(t, store.Set(ctx, "forever", Entry{Value: 2}, 0))

	assert.ElementsMatch(t, []string{"short", "forever"}, testutil.CacheKeys(mr, "aerosense"))

	mr.FastForward(time.Minute + time.Second)

	assert.Equal(t, []string{"forever"}, testutil.CacheKeys(mr, "aerosense"))

	_, found, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = store.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisStore_Purge(t *testing.T) {
	mr, client := setupTestRedis(t)

	store := NewRedisStore(client, "aerosense")
	ctx := context.Background()

	for i := 0; i < purgeBatchSize+5; i++ {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("key-%d", i), Entry{Value: i}, 0))
	}
	require.NoError(t, client.Set(ctx, "aerosense:warmer:lock", "1", 0).Err())

	require.NoError(t, store.Purge(ctx))

	assert.Equal(t, []string{"aerosense:warmer:lock"}, mr.Keys())
}

func TestMemoized_RedisStoreSharesDecodedResults(t *testing.T) {
	_, client := setupTestRedis(t)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	clock := newFakeClock()

	// two caches over the same Redis stand in for two dashboard processes
	first := New(logger, NewRedisStore(client, "aerosense"), WithClock(clock.Now))
	second := New(logger, NewRedisStore(client, "aerosense"), WithClock(clock.Now))

	var calls atomic.Int32
	fn := func(_ context.Context, req plotRequest) (*plotResult, error) {
		calls.Add(1)
		return &plotResult{Rows: len(req.Installation)}, nil
	}

	ctx := context.Background()
	req := plotRequest{Installation: "ost-wt-tests", Refresh: 1}

	a, err := Memoize(first, "plot", For(time.Hour), []string{"refresh"}, fn).Call(ctx, req)
	require.NoError(t, err)

	req.Refresh = 2
	b, err := Memoize(second, "plot", For(time.Hour), []string{"refresh"}, fn).Call(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, a, b)
	assert.NotSame(t, a, b)
}

func TestMemoized_RedisStoreHonoursClockExpiry(t *testing.T) {
	_, client := setupTestRedis(t)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	clock := newFakeClock()
	c := New(logger, NewRedisStore(client, "aerosense"), WithClock(clock.Now))

	var calls atomic.Int32
	m := Memoize(c, "plot", For(time.Minute), nil, countingFn(&calls))

	ctx := context.Background()
	req := plotRequest{Installation: "ost-wt-tests"}

	_, err := m.Call(ctx, req)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	_, err = m.Call(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
