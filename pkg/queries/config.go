package queries

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultRowLimit caps a single sensor data query
const DefaultRowLimit = 17280

var (
	// ErrInvalidRowLimit is returned for a non-positive row limit
	ErrInvalidRowLimit = errors.New("row limit must be positive")
	// ErrUnexpectedValue is returned when a warehouse row cannot be decoded
	ErrUnexpectedValue = errors.New("unexpected warehouse value")
	// ErrInvalidTableName is returned for a table name that is not a plain identifier
	ErrInvalidTableName = errors.New("invalid table name")
	// ErrMissingTable is returned when a configured table does not exist
	ErrMissingTable = errors.New("missing warehouse table")

	tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// Tables names the warehouse tables read by the client
type Tables struct {
	SensorData           string `yaml:"sensorData" default:"sensor_data"`
	ConnectionStatistics string `yaml:"connectionStatistics" default:"connection_statistics_agg"`
	Installations        string `yaml:"installations" default:"installation"`
	SensorTypes          string `yaml:"sensorTypes" default:"sensor_type"`
}

// Config holds query settings
type Config struct {
	// RowLimit is the maximum number of sensor rows returned by one query
	RowLimit int    `yaml:"rowLimit" default:"17280"`
	Tables   Tables `yaml:"tables"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.RowLimit <= 0 {
		return ErrInvalidRowLimit
	}

	for _, name := range c.Tables.names() {
		if !tableNamePattern.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
		}
	}

	return nil
}

func (t Tables) variables() map[string]interface{} {
	return map[string]interface{}{
		"sensor_data":           t.SensorData,
		"connection_statistics": t.ConnectionStatistics,
		"installations":         t.Installations,
		"sensor_types":          t.SensorTypes,
	}
}

func (t Tables) names() []string {
	return []string{t.SensorData, t.ConnectionStatistics, t.Installations, t.SensorTypes}
}

// splitTableName separates an optional database qualifier from the table
func splitTableName(name string) (database, table string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}

	return "", name
}
