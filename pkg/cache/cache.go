// Package cache memoizes expensive query results keyed by their call arguments
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/aerosense/pkg/observability"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnsupportedKey is returned when call arguments cannot be encoded into a key
	ErrUnsupportedKey = errors.New("cache key arguments are not JSON encodable")

	//nolint:gochecknoglobals // fixed namespace for deterministic key UUIDs
	keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://aerosense.ai/dashboard/cache"))
)

// DefaultFlightTimeout bounds a shared computation once it no longer follows
// the caller that started it.
const DefaultFlightTimeout = time.Minute

// Clock returns the current time
type Clock func() time.Time

// Option configures a Cache
type Option func(*Cache)

// WithClock replaces the wall clock used for expiry decisions
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithFlightTimeout bounds each shared computation, normally the warehouse query timeout
func WithFlightTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.flightTimeout = d
		}
	}
}

// Cache owns a store and coordinates memoized functions on top of it.
// Calls with the same key in the same process are coalesced so the wrapped
// function runs once; the other callers share its result or error. The shared
// computation is detached from the starting caller's cancellation, and each
// caller stops waiting when its own context ends.
type Cache struct {
	log           logrus.FieldLogger
	store         Store
	clock         Clock
	flightTimeout time.Duration
	group         singleflight.Group
}

// New creates a cache over store
func New(log logrus.FieldLogger, store Store, opts ...Option) *Cache {
	c := &Cache{
		log:   log.WithField("component", "cache"),
		store:         store,
		clock:         time.Now,
		flightTimeout: DefaultFlightTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Now returns the cache clock's current time
func (c *Cache) Now() time.Time {
	return c.clock()
}

// Store returns the backing store
func (c *Cache) Store() Store {
	return c.store
}

// Purge drops every cached result
func (c *Cache) Purge(ctx context.Context) error {
	c.log.Info("Purging cache")
	return c.store.Purge(ctx)
}

// EvictExpired removes stale entries from stores that do not expire natively
func (c *Cache) EvictExpired(ctx context.Context) (int, error) {
	evicter, ok := c.store.(Evicter)
	if !ok {
		return 0, nil
	}

	evicted, err := evicter.EvictExpired(ctx, c.clock())
	if err != nil {
		return evicted, err
	}

	observability.RecordCacheEvictions(evicted)

	return evicted, nil
}

// Key derives the cache key for a call of function name with args.
//
// args is encoded as JSON. When it encodes to an object, every member whose
// name appears in ignore is dropped before hashing; the remaining members
// are hashed in name order.
func Key(name string, args any, ignore map[string]struct{}) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedKey, err)
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err == nil && members != nil {
		for arg := range ignore {
			delete(members, arg)
		}

		// map keys are marshaled in sorted order
		if raw, err = json.Marshal(members); err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnsupportedKey, err)
		}
	}

	payload := make([]byte, 0, len(name)+1+len(raw))
	payload = append(payload, name...)
	payload = append(payload, 0)
	payload = append(payload, raw...)

	return name + ":" + uuid.NewSHA1(keyNamespace, payload).String(), nil
}
