// Package clickhouse provides a read-only ClickHouse HTTP client
package clickhouse

import (
	"errors"
	"os"
	"time"
)

// Static errors for configuration validation
var (
	ErrURLRequired = errors.New("URL is required")
)

// Config contains ClickHouse connection settings
type Config struct {
	URL          string        `yaml:"url" validate:"required,url"`
	Database     string        `yaml:"database"`
	QueryTimeout time.Duration `yaml:"queryTimeout"`
	Debug        bool          `yaml:"debug"`
	KeepAlive    time.Duration `yaml:"keepAlive"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrURLRequired
	}

	return nil
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 30 * time.Second
	}

	if c.KeepAlive == 0 {
		c.KeepAlive = 30 * time.Second
	}

	if c.Database == "" {
		c.Database = c.MapDatabase("aerosense")
	}
}

// MapDatabase maps a logical database name to a physical database name
// If AEROSENSE_DATABASE_PREFIX env var is set, prepends it to the database name
// Otherwise returns the original name unchanged
func (c *Config) MapDatabase(logicalName string) string {
	if prefix := os.Getenv("AEROSENSE_DATABASE_PREFIX"); prefix != "" {
		return prefix + logicalName
	}
	return logicalName
}
