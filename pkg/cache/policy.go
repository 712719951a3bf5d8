package cache

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPolicy is returned when a policy string cannot be parsed
var ErrInvalidPolicy = errors.New("invalid cache policy")

// Policy decides whether and for how long a memoized result is retained
type Policy struct {
	ttl     time.Duration
	forever bool
}

//nolint:gochecknoglobals // immutable policy values
var (
	// NoStore computes a fresh result on every call and retains nothing
	NoStore = Policy{}
	// Forever retains results until the process exits or the cache is purged
	Forever = Policy{forever: true}
)

// For retains results for ttl. A non-positive ttl is NoStore.
func For(ttl time.Duration) Policy {
	if ttl <= 0 {
		return NoStore
	}

	return Policy{ttl: ttl}
}

// ParsePolicy parses "forever", "none", "0" or a Go duration such as "1h"
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "forever":
		return Forever, nil
	case "none", "nostore", "0", "":
		return NoStore, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return NoStore, fmt.Errorf("%w %q: %w", ErrInvalidPolicy, value, err)
	}

	if d < 0 {
		return NoStore, fmt.Errorf("%w %q: negative duration", ErrInvalidPolicy, value)
	}

	return For(d), nil
}

// Stores reports whether results are retained at all
func (p Policy) Stores() bool {
	return p.forever || p.ttl > 0
}

// TTL returns the retention duration; zero for Forever and NoStore
func (p Policy) TTL() time.Duration {
	return p.ttl
}

// ExpiresAt returns the expiry for an entry written at now; zero means never
func (p Policy) ExpiresAt(now time.Time) time.Time {
	if p.forever {
		return time.Time{}
	}

	return now.Add(p.ttl)
}

func (p Policy) String() string {
	switch {
	case p.forever:
		return "forever"
	case p.ttl <= 0:
		return "none"
	default:
		return p.ttl.String()
	}
}
