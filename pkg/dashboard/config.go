package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTabs is returned when no navigation tabs are configured
	ErrNoTabs = errors.New("at least one tab is required")
	// ErrBarometerRequired is returned when the pressure profile sensor type is missing
	ErrBarometerRequired = errors.New("sensor type \"barometer\" must be configured")
)

// SensorType describes a sensor type and the variables of its sensor_value columns
type SensorType struct {
	DisplayName string   `yaml:"displayName" json:"display_name"` //nolint:tagliatelle // json API uses snake_case
	Variables   []string `yaml:"variables" json:"variables"`
}

// Config holds dashboard content settings
type Config struct {
	// SensorTypes maps a sensor type reference to its description
	SensorTypes map[string]SensorType `yaml:"sensorTypes"`
	// Tabs maps a navigation tab to the controls it shows
	Tabs map[string][]string `yaml:"tabs"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if len(c.Tabs) == 0 {
		return ErrNoTabs
	}

	if _, ok := c.SensorTypes[barometer]; !ok {
		return ErrBarometerRequired
	}

	for name, sensorType := range c.SensorTypes {
		if sensorType.DisplayName == "" {
			return fmt.Errorf("sensor type %q: display name is required", name)
		}
	}

	return nil
}

// SetDefaults fills in the standard sensor types and tabs
func (c *Config) SetDefaults() {
	if c.SensorTypes == nil {
		c.SensorTypes = map[string]SensorType{
			barometer: {
				DisplayName: "Barometer",
			},
			"barometer_thermometer": {
				DisplayName: "Barometer thermometer",
			},
			"differential_barometer": {
				DisplayName: "Differential barometer",
			},
			batteryInfo: {
				DisplayName: "Battery info",
				Variables:   []string{"Voltage [V]", "Cycle count", "State of charge [%]"},
			},
			"accelerometer": {
				DisplayName: "Accelerometer",
				Variables:   []string{"x", "y", "z"},
			},
			"gyroscope": {
				DisplayName: "Gyroscope",
				Variables:   []string{"x", "y", "z"},
			},
			"magnetometer": {
				DisplayName: "Magnetometer",
				Variables:   []string{"x", "y", "z"},
			},
		}
	}

	if c.Tabs == nil {
		c.Tabs = map[string][]string{
			"information_sensors": {"installation", "node", "y_axis", "time_range", "custom_range", "refresh"},
			"sensors":             {"installation", "node", "y_axis", "time_range", "custom_range", "refresh"},
			"pressure_profile":    {"installation", "node", "date", "time", "time_slider", "refresh"},
		}
	}
}
