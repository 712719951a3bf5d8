package selectors

import "github.com/ethpandaops/aerosense/pkg/timerange"

// Selector identifies a selector in the graph
type Selector string

// Selectors
const (
	Installation Selector = "installation"
	Node         Selector = "node"
	YAxis        Selector = "y_axis"
	GraphTitle   Selector = "graph_title"
	TimeRange    Selector = "time_range"
	CustomRange  Selector = "custom_range"
	NavTab       Selector = "nav_tab"
	Controls     Selector = "controls"
)

// CustomRangeState holds the custom date picker. Dates are YYYY-MM-DD or empty.
type CustomRangeState struct {
	Enabled   bool   `json:"enabled"`
	StartDate string `json:"start_date"` //nolint:tagliatelle // matches query parameters
	EndDate   string `json:"end_date"`   //nolint:tagliatelle // matches query parameters
}

// State is the value and option set of every selector. A nil Node is "no selection".
type State struct {
	Installation string           `json:"installation"`
	Node         *string          `json:"node"`
	NodeOptions  []string         `json:"node_options"` //nolint:tagliatelle // json API uses snake_case
	YAxis        string           `json:"y_axis"`       //nolint:tagliatelle // json API uses snake_case
	GraphTitle   string           `json:"graph_title"`  //nolint:tagliatelle // json API uses snake_case
	TimeRange    timerange.Tag    `json:"time_range"`   //nolint:tagliatelle // json API uses snake_case
	CustomRange  CustomRangeState `json:"custom_range"` //nolint:tagliatelle // json API uses snake_case
	NavTab       string           `json:"nav_tab"`      //nolint:tagliatelle // json API uses snake_case
	Controls     []string         `json:"controls"`
}
