// Package timerange resolves the dashboard's symbolic time ranges into concrete windows
package timerange

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeRange is returned when a time range cannot be resolved
var ErrInvalidTimeRange = errors.New("invalid time range")

// Tag is a symbolic time range as shown in the time range selector
type Tag string

// Supported time range tags
const (
	LastMinute Tag = "Last minute"
	LastHour   Tag = "Last hour"
	LastDay    Tag = "Last day"
	LastWeek   Tag = "Last week"
	LastMonth  Tag = "Last month"
	LastYear   Tag = "Last year"
	Custom     Tag = "Custom"
)

//nolint:gochecknoglobals // fixed lookup table
var durations = map[Tag]time.Duration{
	LastMinute: time.Minute,
	LastHour:   time.Hour,
	LastDay:    24 * time.Hour,
	LastWeek:   7 * 24 * time.Hour,
	LastMonth:  31 * 24 * time.Hour,
	LastYear:   365 * 24 * time.Hour,
}

// Tags returns the selectable tags in display order
func Tags() []Tag {
	return []Tag{LastMinute, LastHour, LastDay, LastWeek, LastMonth, LastYear, Custom}
}

// Duration returns the fixed duration of a non-custom tag
func (t Tag) Duration() (time.Duration, bool) {
	d, ok := durations[t]
	return d, ok
}

// Window is a half-open [Start, Finish) interval
type Window struct {
	Start  time.Time `json:"start"`
	Finish time.Time `json:"finish"`
}

// Duration returns Finish - Start
func (w Window) Duration() time.Duration {
	return w.Finish.Sub(w.Start)
}

// Contains reports whether t lies inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.Finish)
}

// Resolve turns a tag, and for Custom its calendar dates, into a concrete window.
//
// Custom ranges cover whole days in UTC on both ends: the window starts at
// midnight of customStart and finishes at midnight of the day after customEnd.
// Only the calendar date of customStart and customEnd is used.
func Resolve(tag Tag, customStart, customEnd *time.Time, now time.Time) (Window, error) {
	if tag == Custom {
		return resolveCustom(customStart, customEnd)
	}

	d, ok := tag.Duration()
	if !ok {
		return Window{}, fmt.Errorf("%w: unknown time range %q", ErrInvalidTimeRange, tag)
	}

	return Window{Start: now.Add(-d), Finish: now}, nil
}

func resolveCustom(customStart, customEnd *time.Time) (Window, error) {
	if customStart == nil || customEnd == nil {
		return Window{}, fmt.Errorf("%w: custom range requires both a start and an end date", ErrInvalidTimeRange)
	}

	start := StartOfDay(*customStart)
	end := StartOfDay(*customEnd)

	if start.After(end) {
		return Window{}, fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidTimeRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	return Window{Start: start, Finish: end.AddDate(0, 0, 1)}, nil
}

// StartOfDay returns midnight UTC of t's calendar date
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a date picker value. Both YYYY-MM-DD and full RFC 3339
// timestamps are accepted; an empty string yields nil.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse date %q", ErrInvalidTimeRange, value)
	}

	day := StartOfDay(t)

	return &day, nil
}
