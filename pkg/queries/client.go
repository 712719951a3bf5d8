// Package queries reads sensor data and installation metadata from the warehouse
package queries

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ethpandaops/aerosense/pkg/clickhouse"
	"github.com/ethpandaops/aerosense/pkg/observability"
	"github.com/sirupsen/logrus"
)

// ConnectionStatisticColumns are the aggregated connection statistics
var ConnectionStatisticColumns = []string{ //nolint:gochecknoglobals // fixed warehouse schema
	"filtered_rssi",
	"raw_rssi",
	"tx_power",
	"allocated_heap_memory",
}

const datetimeParamLayout = "2006-01-02 15:04:05.000000"

// Installation is a deployment whose nodes report sensor data
type Installation struct {
	Reference string `json:"reference"`
	TurbineID string `json:"turbine_id"` //nolint:tagliatelle // warehouse column
}

// Label is the human-readable selector label
func (i Installation) Label() string {
	if i.TurbineID == "" {
		return i.Reference
	}

	return fmt.Sprintf("%s (%s)", i.Reference, i.TurbineID)
}

// Source is the remote data client used by the dashboard
type Source interface {
	// GetSensorData returns sensor readings in [start, finish); truncated reports
	// that only the latest RowLimit rows were returned. A nil node means all nodes.
	GetSensorData(ctx context.Context, installation string, node *string, sensorType string, start, finish time.Time) (frame *Frame, truncated bool, err error)
	// GetAggregatedConnectionStatistics returns connection statistics in [start, finish)
	GetAggregatedConnectionStatistics(ctx context.Context, installation string, node *string, start, finish time.Time) (*Frame, error)
	// GetInstallations lists known installations
	GetInstallations(ctx context.Context) ([]Installation, error)
	// GetNodes lists the nodes that reported data for an installation
	GetNodes(ctx context.Context, installation string) ([]string, error)
	// GetSensorTypes lists sensor type names
	GetSensorTypes(ctx context.Context) ([]string, error)
	// RowLimit is the truncation threshold of GetSensorData
	RowLimit() int
}

// Client implements Source over ClickHouse
type Client struct {
	log       logrus.FieldLogger
	ch        clickhouse.ClientInterface
	templates *TemplateEngine
	config    *Config
}

// NewClient creates a warehouse data client
func NewClient(log logrus.FieldLogger, ch clickhouse.ClientInterface, cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid queries config: %w", err)
	}

	templates, err := NewTemplateEngine()
	if err != nil {
		return nil, err
	}

	return &Client{
		log:       log.WithField("component", "queries"),
		ch:        ch,
		templates: templates,
		config:    cfg,
	}, nil
}

// RowLimit returns the configured row limit
func (c *Client) RowLimit() int {
	return c.config.RowLimit
}

// CheckTables verifies every configured table exists
func (c *Client) CheckTables(ctx context.Context) error {
	for _, name := range c.config.Tables.names() {
		database, table := splitTableName(name)

		exists, err := clickhouse.TableExists(ctx, c.ch, database, table)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", name, err)
		}

		if !exists {
			return fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
	}

	return nil
}

type sensorRow struct {
	Datetime    time.Time  `json:"datetime"`
	SensorValue []*float64 `json:"sensor_value"` //nolint:tagliatelle // warehouse column
}

// GetSensorData fetches the latest RowLimit readings of a sensor type
func (c *Client) GetSensorData(ctx context.Context, installation string, node *string, sensorType string, start, finish time.Time) (*Frame, bool, error) {
	vars := c.variables(node)
	vars["row_limit"] = c.config.RowLimit

	params := windowParams(installation, node, start, finish)
	params["sensor_type"] = sensorType

	var rows []sensorRow
	if err := c.query(ctx, templateSensorData, vars, params, &rows); err != nil {
		return nil, false, err
	}

	observability.RecordClickHouseRows(templateSensorData, len(rows))

	// Rows arrive newest first with one row beyond the limit as a truncation probe.
	truncated := len(rows) > c.config.RowLimit
	if truncated {
		rows = rows[:c.config.RowLimit]
		observability.RecordTruncation(templateSensorData)

		c.log.WithFields(logrus.Fields{
			"installation": installation,
			"sensor_type":  sensorType,
			"row_limit":    c.config.RowLimit,
		}).Debug("Sensor data query truncated")
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row.SensorValue))
	}

	frame := &Frame{Columns: sensorColumns(width), Rows: make([]Row, len(rows))}
	for i, row := range rows {
		frame.Rows[len(rows)-1-i] = Row{Datetime: row.Datetime.UTC(), Values: padValues(row.SensorValue, width)}
	}

	return frame, truncated, nil
}

// GetAggregatedConnectionStatistics fetches connection statistics
func (c *Client) GetAggregatedConnectionStatistics(ctx context.Context, installation string, node *string, start, finish time.Time) (*Frame, error) {
	vars := c.variables(node)
	vars["columns"] = ConnectionStatisticColumns

	var rows []map[string]interface{}
	if err := c.query(ctx, templateConnectionStatistics, vars, windowParams(installation, node, start, finish), &rows); err != nil {
		return nil, err
	}

	observability.RecordClickHouseRows(templateConnectionStatistics, len(rows))

	frame := &Frame{Columns: ConnectionStatisticColumns, Rows: make([]Row, 0, len(rows))}

	for _, raw := range rows {
		datetime, err := parseDatetime(raw["datetime"])
		if err != nil {
			return nil, err
		}

		values := make([]*float64, len(ConnectionStatisticColumns))
		for i, column := range ConnectionStatisticColumns {
			values[i] = toFloat(raw[column])
		}

		frame.Rows = append(frame.Rows, Row{Datetime: datetime, Values: values})
	}

	return frame, nil
}

// GetInstallations lists installations ordered by reference
func (c *Client) GetInstallations(ctx context.Context) ([]Installation, error) {
	installations := []Installation{}
	if err := c.query(ctx, templateInstallations, c.variables(nil), nil, &installations); err != nil {
		return nil, err
	}

	return installations, nil
}

// GetNodes lists node ids for an installation
func (c *Client) GetNodes(ctx context.Context, installation string) ([]string, error) {
	var rows []struct {
		NodeID string `json:"node_id"` //nolint:tagliatelle // warehouse column
	}

	if err := c.query(ctx, templateNodes, c.variables(nil), clickhouse.Params{"installation": installation}, &rows); err != nil {
		return nil, err
	}

	nodes := make([]string, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, row.NodeID)
	}

	return nodes, nil
}

// GetSensorTypes lists sensor type names
func (c *Client) GetSensorTypes(ctx context.Context) ([]string, error) {
	var rows []struct {
		Name string `json:"name"`
	}

	if err := c.query(ctx, templateSensorTypes, c.variables(nil), nil, &rows); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}

	return names, nil
}

func (c *Client) variables(node *string) map[string]interface{} {
	return map[string]interface{}{
		"tables": c.config.Tables.variables(),
		"node":   node != nil,
	}
}

func (c *Client) query(ctx context.Context, name string, vars map[string]interface{}, params clickhouse.Params, dest interface{}) error {
	sql, err := c.templates.Render(name, vars)
	if err != nil {
		return err
	}

	started := time.Now()
	err = c.ch.QueryMany(ctx, sql, params, dest)
	duration := time.Since(started).Seconds()

	if err != nil {
		observability.RecordClickHouseQuery(name, "error", duration)
		observability.RecordError("queries", "clickhouse")

		return fmt.Errorf("%s: %w", name, err)
	}

	observability.RecordClickHouseQuery(name, "success", duration)

	return nil
}

func windowParams(installation string, node *string, start, finish time.Time) clickhouse.Params {
	params := clickhouse.Params{
		"installation": installation,
		"start":        start.UTC().Format(datetimeParamLayout),
		"finish":       finish.UTC().Format(datetimeParamLayout),
	}

	if node != nil {
		params["node"] = *node
	}

	return params
}

func padValues(values []*float64, width int) []*float64 {
	if len(values) == width {
		return values
	}

	out := make([]*float64, width)
	copy(out, values)

	return out
}

func parseDatetime(value interface{}) (time.Time, error) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: datetime %v", ErrUnexpectedValue, value)
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: datetime %q", ErrUnexpectedValue, s)
	}

	return t.UTC(), nil
}

func toFloat(value interface{}) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}

		return &f
	default:
		return nil
	}
}
