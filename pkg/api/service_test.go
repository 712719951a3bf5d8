package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethpandaops/aerosense/pkg/dashboard"
	"github.com/ethpandaops/aerosense/pkg/queries"
	"github.com/ethpandaops/aerosense/pkg/selectors"
	"github.com/ethpandaops/aerosense/pkg/timerange"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDashboard records the requests it receives
type fakeDashboard struct {
	err          error
	purged       bool
	lastSensor   dashboard.SensorPlotRequest
	lastPressure dashboard.PressureProfileRequest
	lastRefresh  int
}

func (f *fakeDashboard) Installations(_ context.Context, refresh int) ([]queries.Installation, error) {
	f.lastRefresh = refresh
	if f.err != nil {
		return nil, f.err
	}

	return []queries.Installation{{Reference: "ost-wt-tests", TurbineID: "WT-1"}}, nil
}

func (f *fakeDashboard) Nodes(_ context.Context, installation string) ([]string, error) {
	if installation == "empty" {
		return []string{}, nil
	}

	return []string{"0", "1"}, nil
}

func (f *fakeDashboard) SensorTypes(_ context.Context) ([]dashboard.SensorTypeOption, error) {
	return []dashboard.SensorTypeOption{{Name: "barometer", DisplayName: "Barometer", Variables: []string{}}}, nil
}

func (f *fakeDashboard) Tabs() map[string][]string {
	return map[string][]string{"sensors": {"installation", "node"}}
}

func (f *fakeDashboard) PlotInformationSensors(_ context.Context, req dashboard.SensorPlotRequest) (dashboard.Result, error) {
	f.lastSensor = req
	if f.err != nil {
		return dashboard.Result{}, f.err
	}

	return dashboard.Result{Warning: "Large amount of data - the query has been limited to the latest 17280 datapoints."}, nil
}

func (f *fakeDashboard) PlotSensors(_ context.Context, req dashboard.SensorPlotRequest) (dashboard.Result, error) {
	f.lastSensor = req
	if f.err != nil {
		return dashboard.Result{}, f.err
	}

	return dashboard.Result{}, nil
}

func (f *fakeDashboard) PlotPressureProfile(_ context.Context, req dashboard.PressureProfileRequest) (dashboard.Result, error) {
	f.lastPressure = req
	if f.err != nil {
		return dashboard.Result{}, f.err
	}

	return dashboard.Result{}, nil
}

func (f *fakeDashboard) Purge(_ context.Context) error {
	f.purged = true
	return nil
}

func newTestApp(t *testing.T, dash *fakeDashboard) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	graph, err := selectors.NewGraph(logger, dash, dash.Tabs())
	require.NoError(t, err)

	app, err := NewApp(context.Background(), dash, graph, nil, logger)
	require.NoError(t, err)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body io.Reader) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}

	return resp.StatusCode, out
}

func TestLoadOpenAPI(t *testing.T) {
	doc, err := LoadOpenAPI(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, doc.Paths.Find("/plots/pressure-profile"))
	assert.NotNil(t, doc.Paths.Find("/selectors/{selector}"))
}

func TestAPI_OpenAPIAndHealth(t *testing.T) {
	app := newTestApp(t, &fakeDashboard{})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/openapi.json", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "3.0.3", body["openapi"])

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestMiddleware_NoStoreAndRecover(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	setupMiddleware(app, logger)

	app.Get(apiPrefix+"/boom", func(_ fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/static", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, apiPrefix+"/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/static", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Cache-Control"))
}

func TestAPI_Options(t *testing.T) {
	dash := &fakeDashboard{}
	app := newTestApp(t, dash)

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/installations?refresh=4", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, dash.lastRefresh)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"label": "ost-wt-tests (WT-1)", "value": "ost-wt-tests"},
	}, body["installations"])

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/installations/ost-wt-tests/nodes", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"0", "1"}, body["nodes"])

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/time-ranges", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["time_ranges"], len(timerange.Tags()))
	assert.Equal(t, "Last day", body["default"])

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/sensor-types", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["sensor_types"], 1)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/tabs/sensors", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"installation", "node"}, body["controls"])

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/tabs/settings", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_DispatchSelector(t *testing.T) {
	app := newTestApp(t, &fakeDashboard{})

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/selectors/installation",
		strings.NewReader(`{"installation": "empty", "node": "3", "node_options": ["3"]}`))
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["node"])
	assert.Equal(t, []interface{}{}, body["node_options"])

	status, body = doRequest(t, app, http.MethodPost, "/api/v1/selectors/time_range",
		strings.NewReader(`{"time_range": "Last hour", "custom_range": {"enabled": true, "start_date": "2024-01-01", "end_date": "2024-01-02"}}`))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"enabled": false, "start_date": "", "end_date": ""}, body["custom_range"])

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/selectors/colour", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/selectors/installation", strings.NewReader(`not json`))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_Plots(t *testing.T) {
	dash := &fakeDashboard{}
	app := newTestApp(t, dash)

	status, body := doRequest(t, app, http.MethodGet,
		"/api/v1/plots/information-sensors?installation=ost-wt-tests&node=0&y_axis=battery_info&time_range=Custom&start_date=2024-01-01&end_date=2024-01-02&refresh=3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["warning"], "17280")
	assert.Equal(t, dashboard.SensorPlotRequest{
		Installation: "ost-wt-tests",
		Node:         "0",
		YAxis:        "battery_info",
		TimeRange:    timerange.Custom,
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-02",
		Refresh:      3,
	}, dash.lastSensor)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/plots/sensors?installation=a&y_axis=barometer", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, timerange.LastDay, dash.lastSensor.TimeRange)

	status, _ = doRequest(t, app, http.MethodGet,
		"/api/v1/plots/pressure-profile?installation=a&date=2024-01-01&hour=1&minute=2&second=3&slider=10.5", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, dashboard.PressureProfileRequest{
		Installation: "a",
		Date:         "2024-01-01",
		Hour:         1,
		Minute:       2,
		Second:       3,
		Slider:       10.5,
	}, dash.lastPressure)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/plots/pressure-profile?date=2024-01-01&hour=noon", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid time range", err: fmt.Errorf("wrapped: %w", timerange.ErrInvalidTimeRange), status: http.StatusBadRequest},
		{name: "unknown sensor type", err: dashboard.ErrUnknownSensorType, status: http.StatusBadRequest},
		{name: "unknown metric", err: dashboard.ErrUnknownMetric, status: http.StatusBadRequest},
		{name: "pressure profile", err: dashboard.ErrInvalidPressureProfile, status: http.StatusBadRequest},
		{name: "deadline", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
		{name: "warehouse", err: fmt.Errorf("sensor_data.sql: %w", io.ErrUnexpectedEOF), status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &fakeDashboard{err: tt.err})

			status, body := doRequest(t, app, http.MethodGet, "/api/v1/plots/sensors?installation=a&y_axis=barometer", nil)
			assert.Equal(t, tt.status, status)
			assert.InDelta(t, tt.status, body["code"], 0)
		})
	}
}

func TestAPI_PurgeCache(t *testing.T) {
	dash := &fakeDashboard{}
	app := newTestApp(t, dash)

	status, _ := doRequest(t, app, http.MethodDelete, "/api/v1/cache", nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.True(t, dash.purged)
}
