package frontend

// Config represents frontend configuration. The page is served by the API server.
type Config struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// Validate validates the frontend configuration
func (c *Config) Validate() error {
	return nil
}
