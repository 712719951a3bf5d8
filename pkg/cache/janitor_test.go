package cache

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_EvictsExpiredEntries(t *testing.T) {
	c, clock := newTestCache(t)
	store, ok := c.Store().(*MemoryStore)
	require.True(t, ok)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "stale", Entry{Value: 1, ExpiresAt: clock.Now().Add(time.Second)}, time.Second))
	require.NoError(t, store.Set(ctx, "live", Entry{Value: 2, ExpiresAt: clock.Now().Add(time.Hour)}, time.Hour))
	require.NoError(t, store.Set(ctx, "forever", Entry{Value: 3}, 0))

	clock.Advance(time.Minute)

	j, err := NewJanitor(logrus.New(), c, "@every 1m")
	require.NoError(t, err)

	j.run()

	assert.Equal(t, 2, store.Len())

	_, found, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJanitor_InvalidSchedule(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := NewJanitor(logrus.New(), c, "every minute please")
	assert.Error(t, err)
}

func TestJanitor_StartStop(t *testing.T) {
	c, _ := newTestCache(t)

	j, err := NewJanitor(logrus.New(), c, "@every 1h")
	require.NoError(t, err)

	j.Start()
	j.Stop()
}

func TestCache_EvictExpiredSkipsNativeStores(t *testing.T) {
	_, client := setupTestRedis(t)
	c := New(logrus.New(), NewRedisStore(client, ""))

	evicted, err := c.EvictExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, evicted)
}
