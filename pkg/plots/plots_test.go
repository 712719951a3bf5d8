package plots

import (
	"encoding/json"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ethpandaops/aerosense/pkg/queries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func testFrame() *queries.Frame {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return &queries.Frame{
		Columns: []string{"sensor_0", "sensor_1"},
		Rows: []queries.Row{
			{Datetime: base, Values: []*float64{ptr(1), ptr(10)}},
			{Datetime: base.Add(time.Second), Values: []*float64{ptr(3), nil}},
		},
	}
}

func TestSensors(t *testing.T) {
	fig := Sensors(testFrame(), []string{"Voltage"})

	require.Len(t, fig.Data, 2)
	assert.Equal(t, "Voltage", fig.Data[0].Name)
	assert.Equal(t, "sensor_1", fig.Data[1].Name)
	assert.Equal(t, []any{"2024-01-01T00:00:00.000000", "2024-01-01T00:00:01.000000"}, fig.Data[0].X)
	assert.Nil(t, fig.Data[1].Y[1])

	data, err := json.Marshal(fig)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"y":[10,null]`)
}

func TestSensors_NilFrame(t *testing.T) {
	fig := Sensors(nil, nil)
	assert.Empty(t, fig.Data)
	assert.NotNil(t, fig.Data)
}

func TestConnectionStatistic(t *testing.T) {
	frame := &queries.Frame{
		Columns: []string{"filtered_rssi", "tx_power"},
		Rows: []queries.Row{
			{Datetime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Values: []*float64{ptr(-60), ptr(4)}},
		},
	}

	fig := ConnectionStatistic(frame, "tx_power")
	require.Len(t, fig.Data, 1)
	assert.Equal(t, "Tx power", fig.Data[0].Name)
	assert.InDelta(t, 4, *fig.Data[0].Y[0], 1e-9)
	assert.Equal(t, "Tx power", fig.Layout.YAxis.Title.Text)

	assert.Empty(t, ConnectionStatistic(frame, "unknown").Data)
}

func TestPressureBarChart(t *testing.T) {
	fig := PressureBarChart(testFrame(), 0.5, 12)

	require.Len(t, fig.Data, 1)
	assert.Equal(t, "bar", fig.Data[0].Type)
	assert.Equal(t, []any{"0", "1"}, fig.Data[0].X)
	assert.InDelta(t, 2, *fig.Data[0].Y[0], 1e-9)
	assert.InDelta(t, 10, *fig.Data[0].Y[1], 1e-9)
	assert.Equal(t, []float64{0.5, 12}, fig.Layout.YAxis.Range)

	empty := PressureBarChart(&queries.Frame{Columns: []string{"sensor_0"}}, 0, 1)
	assert.Empty(t, empty.Data)
	assert.Equal(t, []float64{0, 1}, empty.Layout.YAxis.Range)
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"battery_info":          "Battery info",
		"allocated_heap_memory": "Allocated heap memory",
		"RAW_RSSI":              "Raw rssi",
		"":                      "",
		"éolienne_nord":         "Éolienne nord",
		"über_druck":            "Über druck",
	}

	for in, want := range tests {
		got := Label(in)
		assert.Equal(t, want, got, in)
		assert.True(t, utf8.ValidString(got), in)
	}
}
