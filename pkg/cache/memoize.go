package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethpandaops/aerosense/pkg/observability"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Memoized wraps a function of a request R returning T with a cache
type Memoized[R, T any] struct {
	cache  *Cache
	name   string
	policy Policy
	ignore map[string]struct{}
	fn     func(context.Context, R) (T, error)
	log    logrus.FieldLogger
}

// Memoize wraps fn so that calls with equal requests, ignoring the JSON
// fields named in ignore, return the stored result while it is live.
//
// Errors returned by fn are never stored and reach the caller unchanged.
func Memoize[R, T any](c *Cache, name string, policy Policy, ignore []string, fn func(context.Context, R) (T, error)) *Memoized[R, T] {
	ignored := make(map[string]struct{}, len(ignore))
	for _, arg := range ignore {
		ignored[arg] = struct{}{}
	}

	return &Memoized[R, T]{
		cache:  c,
		name:   name,
		policy: policy,
		ignore: ignored,
		fn:     fn,
		log:    c.log.WithField("function", name),
	}
}

// Policy returns the retention policy of the wrapped function
func (m *Memoized[R, T]) Policy() Policy {
	return m.policy
}

// Key returns the cache key req maps to
func (m *Memoized[R, T]) Key(req R) (string, error) {
	return Key(m.name, req, m.ignore)
}

// Call returns the live cached result for req or computes and stores it
func (m *Memoized[R, T]) Call(ctx context.Context, req R) (T, error) {
	var zero T

	if !m.policy.Stores() {
		observability.RecordCacheBypass(m.name)
		return m.fn(ctx, req)
	}

	key, err := m.Key(req)
	if err != nil {
		return zero, err
	}

	if value, ok := m.lookup(ctx, key); ok {
		observability.RecordCacheHit(m.name)
		return value, nil
	}

	flight := m.cache.group.DoChan(key, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cache.flightTimeout)
		defer cancel()

		// a concurrent flight may have stored the value since our lookup
		if value, ok := m.lookup(flightCtx, key); ok {
			observability.RecordCacheHit(m.name)
			return value, nil
		}

		observability.RecordCacheMiss(m.name)

		value, err := m.fn(flightCtx, req)
		if err != nil {
			return nil, err
		}

		m.store(flightCtx, key, value)

		return value, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-flight:
	}

	if res.Err != nil {
		return zero, res.Err
	}

	if res.Shared {
		m.log.WithField("key", key).Debug("Shared in-flight result")
	}

	value, ok := res.Val.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected cached type %T for %s", res.Val, m.name)
	}

	return value, nil
}

// Forget removes the stored result for req
func (m *Memoized[R, T]) Forget(ctx context.Context, req R) error {
	key, err := m.Key(req)
	if err != nil {
		return err
	}

	return m.cache.store.Delete(ctx, key)
}

func (m *Memoized[R, T]) lookup(ctx context.Context, key string) (T, bool) {
	var zero T

	entry, found, err := m.cache.store.Get(ctx, key)
	if err != nil {
		observability.RecordCacheError(m.name, "get")
		m.log.WithError(err).WithField("key", key).Warn("Failed to read cache entry")

		return zero, false
	}

	if !found || entry.Expired(m.cache.clock()) {
		return zero, false
	}

	switch value := entry.Value.(type) {
	case T:
		return value, true
	case json.RawMessage:
		var decoded T
		if err := json.Unmarshal(value, &decoded); err != nil {
			observability.RecordCacheError(m.name, "decode")
			m.log.WithError(err).WithField("key", key).Warn("Failed to decode cache entry")

			return zero, false
		}

		return decoded, true
	default:
		observability.RecordCacheError(m.name, "decode")
		m.log.WithField("key", key).Warnf("Cache entry holds unexpected type %T", entry.Value)

		return zero, false
	}
}

func (m *Memoized[R, T]) store(ctx context.Context, key string, value T) {
	entry := Entry{
		Value:     value,
		ExpiresAt: m.policy.ExpiresAt(m.cache.clock()),
	}

	if err := m.cache.store.Set(ctx, key, entry, m.policy.TTL()); err != nil {
		observability.RecordCacheError(m.name, "set")
		m.log.WithError(err).WithField("key", key).Warn("Failed to store cache entry")
	}
}
