package testutil

import (
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	aeroredis "github.com/ethpandaops/aerosense/pkg/redis"
	"github.com/redis/go-redis/v9"
)

// NewMiniredisClient returns a miniredis server and a client connected to it.
func NewMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close miniredis client: %v", err)
		}
	})

	return mr, client
}

// NewMiniredisConfig returns a miniredis server and a Redis config addressing it
// with the given key prefix.
func NewMiniredisConfig(t *testing.T, prefix string) (*miniredis.Miniredis, *aeroredis.Config) {
	t.Helper()

	mr := miniredis.RunT(t)

	return mr, &aeroredis.Config{
		Address: "redis://" + mr.Addr(),
		Prefix:  prefix,
	}
}

// CacheKeys lists the cache entries stored under prefix, without the prefix.
func CacheKeys(mr *miniredis.Miniredis, prefix string) []string {
	cachePrefix := prefix + ":cache:"

	keys := make([]string, 0)
	for _, key := range mr.Keys() {
		if rest, ok := strings.CutPrefix(key, cachePrefix); ok {
			keys = append(keys, rest)
		}
	}

	return keys
}
