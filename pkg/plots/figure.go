// Package plots renders query frames as plotly figure JSON
package plots

import "time"

// Figure is a plotly figure
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a plotly trace
type Trace struct {
	Type string     `json:"type"`
	Mode string     `json:"mode,omitempty"`
	Name string     `json:"name,omitempty"`
	X    []any      `json:"x"`
	Y    []*float64 `json:"y"`
}

// Layout is the subset of plotly layout the dashboard sets
type Layout struct {
	Title      *Text  `json:"title,omitempty"`
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
	ShowLegend bool   `json:"showlegend"`
	UIRevision string `json:"uirevision,omitempty"`
}

// Axis is a plotly axis
type Axis struct {
	Title *Text     `json:"title,omitempty"`
	Range []float64 `json:"range,omitempty"`
	Type  string    `json:"type,omitempty"`
}

// Text is a plotly title
type Text struct {
	Text string `json:"text"`
}

func title(s string) *Text {
	if s == "" {
		return nil
	}

	return &Text{Text: s}
}

func datetimes(ts []time.Time) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = t.UTC().Format("2006-01-02T15:04:05.000000")
	}

	return out
}
