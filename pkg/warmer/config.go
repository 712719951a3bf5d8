// Package warmer keeps installation and node lists warm in the shared cache
package warmer

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	// ErrInvalidConcurrency is returned when concurrency is not positive
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	// ErrScheduleRequired is returned when no schedule is configured
	ErrScheduleRequired = errors.New("warmer schedule is required")
)

// Config contains warmer settings
type Config struct {
	Enabled     bool          `yaml:"enabled" default:"false"`
	Schedule    string        `yaml:"schedule" default:"@every 5m"`
	Concurrency int           `yaml:"concurrency" default:"2"`
	TaskTimeout time.Duration `yaml:"taskTimeout" default:"2m"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.Schedule == "" {
		return ErrScheduleRequired
	}

	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return err
	}

	return nil
}
