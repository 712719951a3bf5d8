package cache

import (
	"errors"
	"fmt"
)

// Supported backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var (
	// ErrUnknownBackend is returned for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown cache backend")
	// ErrJanitorScheduleRequired is returned when the memory backend has no janitor schedule
	ErrJanitorScheduleRequired = errors.New("janitor schedule is required for the memory backend")
)

// Config holds cache settings. Policies are written as "forever", "none" or a duration.
type Config struct {
	// Backend is either "memory" or "redis"
	Backend string `yaml:"backend" default:"memory"`
	// TTL applies to plot results and selector option lists
	TTL string `yaml:"ttl" default:"1h"`
	// PressureWindow applies to the 60 second barometer window behind the pressure profile
	PressureWindow string `yaml:"pressureWindow" default:"forever"`
	// JanitorSchedule is a cron spec for evicting expired memory entries
	JanitorSchedule string `yaml:"janitorSchedule" default:"@every 1m"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
		if c.JanitorSchedule == "" {
			return ErrJanitorScheduleRequired
		}
	case BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	if _, err := c.TTLPolicy(); err != nil {
		return err
	}

	if _, err := c.PressureWindowPolicy(); err != nil {
		return err
	}

	return nil
}

// TTLPolicy parses the TTL policy
func (c *Config) TTLPolicy() (Policy, error) {
	p, err := ParsePolicy(c.TTL)
	if err != nil {
		return NoStore, fmt.Errorf("ttl: %w", err)
	}

	return p, nil
}

// PressureWindowPolicy parses the pressure window policy
func (c *Config) PressureWindowPolicy() (Policy, error) {
	p, err := ParsePolicy(c.PressureWindow)
	if err != nil {
		return NoStore, fmt.Errorf("pressureWindow: %w", err)
	}

	return p, nil
}
