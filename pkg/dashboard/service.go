// Package dashboard orchestrates the dashboard plots over the warehouse and the query cache
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ethpandaops/aerosense/pkg/cache"
	"github.com/ethpandaops/aerosense/pkg/observability"
	"github.com/ethpandaops/aerosense/pkg/plots"
	"github.com/ethpandaops/aerosense/pkg/queries"
	"github.com/ethpandaops/aerosense/pkg/timerange"
	"github.com/sirupsen/logrus"
)

const (
	batteryInfo = "battery_info"
	barometer   = "barometer"

	refreshArg = "refresh"
)

var (
	// ErrUnknownSensorType is returned for a sensor type without a configured description
	ErrUnknownSensorType = errors.New("unknown sensor type")
	// ErrUnknownMetric is returned for an information sensor metric that is neither
	// battery_info nor a connection statistic
	ErrUnknownMetric = errors.New("unknown metric")
)

// Result is a rendered figure and the truncation warning, empty when the data was complete
type Result struct {
	Figure  plots.Figure `json:"figure"`
	Warning string       `json:"warning"`
}

// SensorPlotRequest selects the data behind a sensor or information sensor plot.
// Refresh only re-triggers the plot; it is not part of the cache key.
type SensorPlotRequest struct {
	Installation string        `json:"installation"`
	Node         string        `json:"node"`
	YAxis        string        `json:"y_axis"`     //nolint:tagliatelle // json API uses snake_case
	TimeRange    timerange.Tag `json:"time_range"` //nolint:tagliatelle // json API uses snake_case
	StartDate    string        `json:"start_date"` //nolint:tagliatelle // json API uses snake_case
	EndDate      string        `json:"end_date"`   //nolint:tagliatelle // json API uses snake_case
	Refresh      int           `json:"refresh"`
}

// Window resolves the request's time range at now. The dates are only read
// for the custom range.
func (r SensorPlotRequest) Window(now time.Time) (timerange.Window, error) {
	if r.TimeRange != timerange.Custom {
		return timerange.Resolve(r.TimeRange, nil, nil, now)
	}

	start, err := timerange.ParseDate(r.StartDate)
	if err != nil {
		return timerange.Window{}, err
	}

	end, err := timerange.ParseDate(r.EndDate)
	if err != nil {
		return timerange.Window{}, err
	}

	return timerange.Resolve(r.TimeRange, start, end, now)
}

// normalized drops the dates of a non-custom range so they do not split the cache key
func (r SensorPlotRequest) normalized() SensorPlotRequest {
	if r.TimeRange != timerange.Custom {
		r.StartDate = ""
		r.EndDate = ""
	}

	return r
}

// SensorTypeOption is a selectable sensor type
type SensorTypeOption struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"` //nolint:tagliatelle // json API uses snake_case
	Variables   []string `json:"variables"`
}

type nodesRequest struct {
	Installation string `json:"installation"`
}

type installationsRequest struct {
	Refresh int `json:"refresh"`
}

type sensorTypesRequest struct{}

// Service runs the plot orchestrators and selector option lookups
type Service struct {
	log    logrus.FieldLogger
	source queries.Source
	cache  *cache.Cache
	config *Config

	informationSensors *cache.Memoized[SensorPlotRequest, Result]
	sensors            *cache.Memoized[SensorPlotRequest, Result]
	pressureWindow     *cache.Memoized[pressureWindowRequest, PressureWindow]
	installations      *cache.Memoized[installationsRequest, []queries.Installation]
	nodes              *cache.Memoized[nodesRequest, []string]
	sensorTypes        *cache.Memoized[sensorTypesRequest, []string]
}

// NewService creates the dashboard service. ttl applies to plots and option lists,
// pressureWindow to the 60 second barometer window.
func NewService(log logrus.FieldLogger, source queries.Source, c *cache.Cache, cfg *Config, ttl, pressureWindow cache.Policy) *Service {
	s := &Service{
		log:    log.WithField("service", "dashboard"),
		source: source,
		cache:  c,
		config: cfg,
	}

	s.informationSensors = cache.Memoize(c, "plot_information_sensors", ttl, []string{refreshArg}, s.plotInformationSensors)
	s.sensors = cache.Memoize(c, "plot_sensors", ttl, []string{refreshArg}, s.plotSensors)
	s.pressureWindow = cache.Memoize(c, "pressure_window", pressureWindow, nil, s.fetchPressureWindow)
	s.installations = cache.Memoize(c, "installations", ttl, []string{refreshArg}, s.fetchInstallations)
	s.nodes = cache.Memoize(c, "nodes", ttl, nil, s.fetchNodes)
	s.sensorTypes = cache.Memoize(c, "sensor_types", ttl, nil, s.fetchSensorTypes)

	return s
}

// Tabs returns the configured navigation tabs
func (s *Service) Tabs() map[string][]string {
	return s.config.Tabs
}

// PlotInformationSensors plots battery info or a connection statistic
func (s *Service) PlotInformationSensors(ctx context.Context, req SensorPlotRequest) (Result, error) {
	return s.observe("information_sensors", func() (Result, error) {
		return s.informationSensors.Call(ctx, req.normalized())
	})
}

// PlotSensors plots the raw data of a sensor type
func (s *Service) PlotSensors(ctx context.Context, req SensorPlotRequest) (Result, error) {
	return s.observe("sensors", func() (Result, error) {
		return s.sensors.Call(ctx, req.normalized())
	})
}

// Installations lists installations. refresh is ignored by the cache.
func (s *Service) Installations(ctx context.Context, refresh int) ([]queries.Installation, error) {
	return s.installations.Call(ctx, installationsRequest{Refresh: refresh})
}

// Nodes lists the nodes of an installation
func (s *Service) Nodes(ctx context.Context, installation string) ([]string, error) {
	return s.nodes.Call(ctx, nodesRequest{Installation: installation})
}

// SensorTypes lists the sensor types reported by the warehouse with their descriptions
func (s *Service) SensorTypes(ctx context.Context) ([]SensorTypeOption, error) {
	names, err := s.sensorTypes.Call(ctx, sensorTypesRequest{})
	if err != nil {
		return nil, err
	}

	options := make([]SensorTypeOption, 0, len(names))

	for _, name := range names {
		option := SensorTypeOption{Name: name, DisplayName: plots.Label(name), Variables: []string{}}

		if sensorType, ok := s.config.SensorTypes[name]; ok {
			option.DisplayName = sensorType.DisplayName
			option.Variables = append(option.Variables, sensorType.Variables...)
		}

		options = append(options, option)
	}

	return options, nil
}

// WarmInstallations refetches the installation list into the cache
func (s *Service) WarmInstallations(ctx context.Context) ([]queries.Installation, error) {
	if err := s.installations.Forget(ctx, installationsRequest{}); err != nil {
		return nil, fmt.Errorf("failed to forget installations: %w", err)
	}

	return s.Installations(ctx, 0)
}

// WarmNodes refetches the node list of an installation into the cache
func (s *Service) WarmNodes(ctx context.Context, installation string) ([]string, error) {
	if err := s.nodes.Forget(ctx, nodesRequest{Installation: installation}); err != nil {
		return nil, fmt.Errorf("failed to forget nodes: %w", err)
	}

	return s.Nodes(ctx, installation)
}

// Purge drops every cached result
func (s *Service) Purge(ctx context.Context) error {
	return s.cache.Purge(ctx)
}

func (s *Service) plotInformationSensors(ctx context.Context, req SensorPlotRequest) (Result, error) {
	window, err := req.Window(s.cache.Now())
	if err != nil {
		return Result{}, err
	}

	node := nodeFilter(req.Node)

	if req.YAxis == batteryInfo {
		sensorType, ok := s.config.SensorTypes[batteryInfo]
		if !ok {
			return Result{}, fmt.Errorf("%w: %q", ErrUnknownSensorType, batteryInfo)
		}

		frame, truncated, err := s.source.GetSensorData(ctx, req.Installation, node, batteryInfo, window.Start, window.Finish)
		if err != nil {
			return Result{}, err
		}

		return Result{Figure: plots.Sensors(frame, sensorType.Variables), Warning: s.warning(truncated)}, nil
	}

	if !slices.Contains(queries.ConnectionStatisticColumns, req.YAxis) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMetric, req.YAxis)
	}

	frame, err := s.source.GetAggregatedConnectionStatistics(ctx, req.Installation, node, window.Start, window.Finish)
	if err != nil {
		return Result{}, err
	}

	return Result{Figure: plots.ConnectionStatistic(frame, req.YAxis)}, nil
}

func (s *Service) plotSensors(ctx context.Context, req SensorPlotRequest) (Result, error) {
	window, err := req.Window(s.cache.Now())
	if err != nil {
		return Result{}, err
	}

	sensorType, ok := s.config.SensorTypes[req.YAxis]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownSensorType, req.YAxis)
	}

	frame, truncated, err := s.source.GetSensorData(ctx, req.Installation, nodeFilter(req.Node), req.YAxis, window.Start, window.Finish)
	if err != nil {
		return Result{}, err
	}

	return Result{Figure: plots.Sensors(frame, sensorType.Variables), Warning: s.warning(truncated)}, nil
}

func (s *Service) fetchInstallations(ctx context.Context, _ installationsRequest) ([]queries.Installation, error) {
	return s.source.GetInstallations(ctx)
}

func (s *Service) fetchNodes(ctx context.Context, req nodesRequest) ([]string, error) {
	nodes, err := s.source.GetNodes(ctx, req.Installation)
	if err != nil {
		return nil, err
	}

	if nodes == nil {
		nodes = []string{}
	}

	return nodes, nil
}

func (s *Service) fetchSensorTypes(ctx context.Context, _ sensorTypesRequest) ([]string, error) {
	return s.source.GetSensorTypes(ctx)
}

func (s *Service) warning(truncated bool) string {
	if !truncated {
		return ""
	}

	return fmt.Sprintf("Large amount of data - the query has been limited to the latest %d datapoints.", s.source.RowLimit())
}

func (s *Service) observe(plot string, fn func() (Result, error)) (Result, error) {
	started := time.Now()

	result, err := fn()

	status := "success"
	if err != nil {
		status = "error"

		s.log.WithError(err).WithField("plot", plot).Warn("Failed to plot")
	}

	observability.RecordPlot(plot, status, time.Since(started).Seconds())

	return result, err
}

// nodeFilter maps an empty node selection to all nodes
func nodeFilter(node string) *string {
	if node == "" {
		return nil
	}

	return &node
}
