package cmd

import (
	"os"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/aerosense/pkg/engine"
	"gopkg.in/yaml.v3"
)

// loadConfig reads the engine configuration, applying defaults first
func loadConfig(file string) (*engine.Config, error) {
	if file == "" {
		file = "config.yaml"
	}

	config := &engine.Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(file) //nolint:gosec // User-provided config file path
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	// Environment overrides for container deployments
	if url := os.Getenv("AEROSENSE_CLICKHOUSE_URL"); url != "" {
		config.ClickHouse.URL = url
	}

	if addr := os.Getenv("AEROSENSE_REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}

	return config, nil
}
