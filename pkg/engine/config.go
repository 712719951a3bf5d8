// Package engine wires the dashboard backend services together
package engine

import (
	"errors"
	"fmt"

	"github.com/ethpandaops/aerosense/pkg/api"
	"github.com/ethpandaops/aerosense/pkg/cache"
	"github.com/ethpandaops/aerosense/pkg/clickhouse"
	"github.com/ethpandaops/aerosense/pkg/dashboard"
	"github.com/ethpandaops/aerosense/pkg/frontend"
	"github.com/ethpandaops/aerosense/pkg/queries"
	"github.com/ethpandaops/aerosense/pkg/redis"
	"github.com/ethpandaops/aerosense/pkg/warmer"
)

var (
	// ErrRedisRequired is returned when a component needs Redis but no address is configured
	ErrRedisRequired = errors.New("redis address is required")
	// ErrWarmerNeedsSharedCache is returned when the warmer is enabled with a process-local cache
	ErrWarmerNeedsSharedCache = errors.New("warmer requires the redis cache backend")
	// ErrNothingToRun is returned when both the API and the warmer are disabled
	ErrNothingToRun = errors.New("neither api nor warmer is enabled")
)

// Config represents the complete engine configuration
type Config struct {
	// Core settings
	Logging         string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`
	MetricsAddr     string `yaml:"metricsAddr" default:":9091"`
	HealthCheckAddr string `yaml:"healthCheckAddr"`
	PProfAddr       string `yaml:"pprofAddr"`

	// Dependencies
	ClickHouse clickhouse.Config `yaml:"clickhouse"`
	Redis      redis.Config      `yaml:"redis"`

	Queries   queries.Config   `yaml:"queries"`
	Cache     cache.Config     `yaml:"cache"`
	Dashboard dashboard.Config `yaml:"dashboard"`

	// API service configuration
	API api.Config `yaml:"api"`

	// Frontend is served by the API service
	Frontend frontend.Config `yaml:"frontend"`

	// Background cache warming
	Warmer warmer.Config `yaml:"warmer"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.ClickHouse.Validate(); err != nil {
		return fmt.Errorf("clickhouse: %w", err)
	}

	if err := c.Queries.Validate(); err != nil {
		return fmt.Errorf("queries: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if err := c.Dashboard.Validate(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if err := c.Frontend.Validate(); err != nil {
		return fmt.Errorf("frontend: %w", err)
	}

	if err := c.Warmer.Validate(); err != nil {
		return fmt.Errorf("warmer: %w", err)
	}

	if !c.API.Enabled && !c.Warmer.Enabled {
		return ErrNothingToRun
	}

	if c.Warmer.Enabled && c.Cache.Backend != cache.BackendRedis {
		return ErrWarmerNeedsSharedCache
	}

	if c.needsRedis() {
		if c.Redis.Address == "" {
			return ErrRedisRequired
		}

		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	return nil
}

func (c *Config) needsRedis() bool {
	return c.Cache.Backend == cache.BackendRedis || c.Warmer.Enabled
}
