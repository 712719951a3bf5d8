package plots

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethpandaops/aerosense/pkg/queries"
)

// Sensors plots every column of a frame as a line over time. Line descriptions
// name the traces in column order; missing descriptions fall back to the column name.
func Sensors(frame *queries.Frame, lineDescriptions []string) Figure {
	fig := Figure{
		Data: []Trace{},
		Layout: Layout{
			XAxis:      Axis{Title: title("Date/time"), Type: "date"},
			YAxis:      Axis{Title: title("Raw value")},
			ShowLegend: true,
			UIRevision: "sensors",
		},
	}

	if frame == nil {
		return fig
	}

	x := datetimes(frame.Datetimes())

	for i, column := range frame.Columns {
		y, _ := frame.Column(column)

		name := column
		if i < len(lineDescriptions) && lineDescriptions[i] != "" {
			name = lineDescriptions[i]
		}

		fig.Data = append(fig.Data, Trace{Type: "scatter", Mode: "lines", Name: name, X: x, Y: y})
	}

	return fig
}

// ConnectionStatistic plots a single connection statistic over time
func ConnectionStatistic(frame *queries.Frame, column string) Figure {
	fig := Figure{
		Data: []Trace{},
		Layout: Layout{
			XAxis:      Axis{Title: title("Date/time"), Type: "date"},
			YAxis:      Axis{Title: title(Label(column))},
			UIRevision: "connection-statistics",
		},
	}

	if frame == nil {
		return fig
	}

	y, ok := frame.Column(column)
	if !ok {
		return fig
	}

	fig.Data = append(fig.Data, Trace{
		Type: "scatter",
		Mode: "lines",
		Name: Label(column),
		X:    datetimes(frame.Datetimes()),
		Y:    y,
	})

	return fig
}

// PressureBarChart plots the mean reading of each barometer over the frame as
// bars, with the y-axis fixed to [minimum, maximum] so successive slider
// positions share a scale.
func PressureBarChart(frame *queries.Frame, minimum, maximum float64) Figure {
	fig := Figure{
		Data: []Trace{},
		Layout: Layout{
			XAxis:      Axis{Title: title("Sensor")},
			YAxis:      Axis{Title: title("Raw value"), Range: []float64{minimum, maximum}},
			UIRevision: "pressure-profile",
		},
	}

	if frame == nil || frame.Len() == 0 {
		return fig
	}

	x := make([]any, len(frame.Columns))
	y := make([]*float64, len(frame.Columns))

	for i, column := range frame.Columns {
		x[i] = strconv.Itoa(i)

		values, _ := frame.Column(column)
		y[i] = mean(values)
	}

	fig.Data = append(fig.Data, Trace{Type: "bar", Name: "Pressure", X: x, Y: y})

	return fig
}

// Label turns a snake_case column or selector value into a display label:
// battery_info becomes "Battery info".
func Label(value string) string {
	if value == "" {
		return ""
	}

	label := strings.ToLower(strings.ReplaceAll(value, "_", " "))
	first, size := utf8.DecodeRuneInString(label)

	return string(unicode.ToUpper(first)) + label[size:]
}

func mean(values []*float64) *float64 {
	var (
		sum   float64
		count int
	)

	for _, v := range values {
		if v == nil {
			continue
		}

		sum += *v
		count++
	}

	if count == 0 {
		return nil
	}

	m := sum / float64(count)

	return &m
}
