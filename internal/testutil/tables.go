//go:build integration

package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethpandaops/aerosense/pkg/clickhouse"
	"github.com/stretchr/testify/require"
)

// SensorReading is one row of the sensor_data fixture table
type SensorReading struct {
	Datetime     time.Time
	Installation string
	Node         string
	SensorType   string
	Values       []float64
}

// CreateSensorTables creates the warehouse tables read by the query client.
func CreateSensorTables(t *testing.T, client clickhouse.ClientInterface) {
	t.Helper()
	ctx := context.Background()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS sensor_data (
			datetime DateTime64(6, 'UTC'),
			installation_reference String,
			node_id String,
			sensor_type_reference String,
			sensor_value Array(Nullable(Float64))
		) ENGINE = MergeTree()
		ORDER BY (installation_reference, sensor_type_reference, datetime)`,
		`CREATE TABLE IF NOT EXISTS connection_statistics_agg (
			datetime DateTime64(6, 'UTC'),
			installation_reference String,
			node_id String,
			filtered_rssi Nullable(Float64),
			raw_rssi Nullable(Float64),
			tx_power Nullable(Float64),
			allocated_heap_memory Nullable(Float64)
		) ENGINE = MergeTree()
		ORDER BY (installation_reference, datetime)`,
		`CREATE TABLE IF NOT EXISTS installation (
			reference String,
			turbine_id Nullable(String)
		) ENGINE = MergeTree()
		ORDER BY reference`,
		`CREATE TABLE IF NOT EXISTS sensor_type (
			name String
		) ENGINE = MergeTree()
		ORDER BY name`,
	}

	for _, stmt := range statements {
		_, err := client.Execute(ctx, stmt, nil)
		require.NoError(t, err)
	}
}

// InsertSensorReadings inserts rows into sensor_data.
func InsertSensorReadings(t *testing.T, client clickhouse.ClientInterface, readings []SensorReading) {
	t.Helper()

	if len(readings) == 0 {
		return
	}

	rows := make([]string, 0, len(readings))
	for _, r := range readings {
		values := make([]string, len(r.Values))
		for i, v := range r.Values {
			values[i] = fmt.Sprintf("%g", v)
		}

		rows = append(rows, fmt.Sprintf("('%s', '%s', '%s', '%s', [%s])",
			r.Datetime.UTC().Format("2006-01-02 15:04:05.000000"),
			r.Installation, r.Node, r.SensorType, strings.Join(values, ", ")))
	}

	insertSQL := "INSERT INTO sensor_data (datetime, installation_reference, node_id, sensor_type_reference, sensor_value) VALUES " +
		strings.Join(rows, ", ")

	_, err := client.Execute(context.Background(), insertSQL, nil)
	require.NoError(t, err)
}

// InsertInstallations inserts installation rows. An empty turbine id is stored as NULL.
func InsertInstallations(t *testing.T, client clickhouse.ClientInterface, turbines map[string]string) {
	t.Helper()

	rows := make([]string, 0, len(turbines))
	for reference, turbine := range turbines {
		if turbine == "" {
			rows = append(rows, fmt.Sprintf("('%s', NULL)", reference))
			continue
		}

		rows = append(rows, fmt.Sprintf("('%s', '%s')", reference, turbine))
	}

	_, err := client.Execute(context.Background(),
		"INSERT INTO installation (reference, turbine_id) VALUES "+strings.Join(rows, ", "), nil)
	require.NoError(t, err)
}
