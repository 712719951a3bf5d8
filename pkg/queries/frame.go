package queries

import (
	"fmt"
	"time"
)

// Row is a single timestamped sample. Values align with Frame.Columns; a nil
// value is a missing reading.
type Row struct {
	Datetime time.Time  `json:"datetime"`
	Values   []*float64 `json:"values"`
}

// Frame is a tabular query result ordered by datetime ascending
type Frame struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}

	return len(f.Rows)
}

// Between returns the rows with from <= datetime < to
func (f *Frame) Between(from, to time.Time) *Frame {
	out := &Frame{Columns: f.Columns, Rows: []Row{}}

	for _, row := range f.Rows {
		if row.Datetime.Before(from) || !row.Datetime.Before(to) {
			continue
		}

		out.Rows = append(out.Rows, row)
	}

	return out
}

// Column returns the values of a named column
func (f *Frame) Column(name string) ([]*float64, bool) {
	idx := -1

	for i, column := range f.Columns {
		if column == name {
			idx = i
			break
		}
	}

	if idx < 0 {
		return nil, false
	}

	values := make([]*float64, 0, len(f.Rows))
	for _, row := range f.Rows {
		if idx < len(row.Values) {
			values = append(values, row.Values[idx])
		} else {
			values = append(values, nil)
		}
	}

	return values, true
}

// Datetimes returns the row timestamps
func (f *Frame) Datetimes() []time.Time {
	out := make([]time.Time, 0, len(f.Rows))
	for _, row := range f.Rows {
		out = append(out, row.Datetime)
	}

	return out
}

// MinMax returns the smallest and largest reading across every column.
// ok is false when the frame holds no readings.
func (f *Frame) MinMax() (minimum, maximum float64, ok bool) {
	for _, row := range f.Rows {
		for _, v := range row.Values {
			if v == nil {
				continue
			}

			if !ok || *v < minimum {
				minimum = *v
			}

			if !ok || *v > maximum {
				maximum = *v
			}

			ok = true
		}
	}

	return minimum, maximum, ok
}

// sensorColumns names the positional columns of a sensor_value array
func sensorColumns(n int) []string {
	columns := make([]string, n)
	for i := range columns {
		columns[i] = fmt.Sprintf("sensor_%d", i)
	}

	return columns
}
