// Package redis provides Redis client configuration
package redis

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Define static errors
var (
	ErrAddressRequired = errors.New("redis address is required")
)

// Config holds Redis client configuration
type Config struct {
	// Address is a redis:// URL
	Address string `yaml:"address"`
	Prefix  string `yaml:"prefix" default:"aerosense"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrAddressRequired
	}

	if c.Prefix == "" {
		c.Prefix = "aerosense"
	}

	return nil
}

// Options parses the address into client options
func (c *Config) Options() (*redis.Options, error) {
	opt, err := redis.ParseURL(c.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis address: %w", err)
	}

	return opt, nil
}

// PrefixQueue adds the configured prefix to an Asynq queue name
func (c *Config) PrefixQueue(queue string) string {
	if c.Prefix == "" {
		return queue
	}
	return fmt.Sprintf("%s:%s", c.Prefix, queue)
}
