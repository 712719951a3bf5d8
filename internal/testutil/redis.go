//go:build integration

package testutil

import (
	"context"
	"testing"

	aeroredis "github.com/ethpandaops/aerosense/pkg/redis"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisConnection holds a client and the matching dashboard config for a Redis container.
type RedisConnection struct {
	Client *redis.Client
	Config *aeroredis.Config
}

// NewRedisContainer starts a Redis container, terminated when the test completes.
func NewRedisContainer(t *testing.T) *RedisConnection {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start Redis container: %v", err)
	}

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	})

	connURL, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get Redis connection string: %v", err)
	}

	cfg := &aeroredis.Config{Address: connURL, Prefix: "aerosense-test"}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("failed to parse Redis connection string: %v", err)
	}

	client := redis.NewClient(opts)

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close Redis client: %v", err)
		}
	})

	return &RedisConnection{
		Client: client,
		Config: cfg,
	}
}
