package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const purgeBatchSize = 500

// redisEnvelope is the JSON document stored per key
type redisEnvelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// RedisStore shares memoized results between dashboard processes.
// Values are JSON encoded, so callers receive an equal copy rather than the
// original value. Concurrent writers of the same key are last-writer-wins.
type RedisStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

// NewRedisStore creates a store writing under "<prefix>:cache:"
func NewRedisStore(redisClient *redis.Client, prefix string) *RedisStore {
	keyPrefix := "cache:"
	if prefix != "" {
		keyPrefix = prefix + ":cache:"
	}

	return &RedisStore{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

// Get implements Store. The returned Entry.Value is a json.RawMessage.
func (r *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := r.redisClient.Get(ctx, r.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}

	var envelope redisEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	entry := Entry{Value: envelope.Value}
	if envelope.ExpiresAt != nil {
		entry.ExpiresAt = *envelope.ExpiresAt
	}

	return entry, true, nil
}

// Set implements Store
func (r *RedisStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	value, err := json.Marshal(entry.Value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	envelope := redisEnvelope{Value: value}
	if !entry.ExpiresAt.IsZero() {
		expiresAt := entry.ExpiresAt.UTC()
		envelope.ExpiresAt = &expiresAt
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return r.redisClient.Set(ctx, r.keyPrefix+key, data, ttl).Err()
}

// Delete implements Store
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.redisClient.Del(ctx, r.keyPrefix+key).Err()
}

// Purge implements Store by deleting every key under the store prefix
func (r *RedisStore) Purge(ctx context.Context) error {
	iter := r.redisClient.Scan(ctx, 0, r.keyPrefix+"*", purgeBatchSize).Iterator()

	batch := make([]string, 0, purgeBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())

		if len(batch) == purgeBatchSize {
			if err := r.redisClient.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(batch) > 0 {
		return r.redisClient.Del(ctx, batch...).Err()
	}

	return nil
}
