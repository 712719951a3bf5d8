package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/aerosense/pkg/plots"
	"github.com/ethpandaops/aerosense/pkg/queries"
	"github.com/ethpandaops/aerosense/pkg/timerange"
	"github.com/sirupsen/logrus"
)

const (
	// PressureWindowLength is the span of barometer data fetched per profile
	PressureWindowLength = 60 * time.Second
	// pressureSliceHalfWidth is half the width of the slice shown per slider position
	pressureSliceHalfWidth = 500 * time.Millisecond
)

// ErrInvalidPressureProfile is returned for an out of range date, time or slider value
var ErrInvalidPressureProfile = errors.New("invalid pressure profile request")

// PressureProfileRequest selects a barometer window and a slider position in it
type PressureProfileRequest struct {
	Installation string  `json:"installation"`
	Node         string  `json:"node"`
	Date         string  `json:"date"`
	Hour         int     `json:"hour"`
	Minute       int     `json:"minute"`
	Second       int     `json:"second"`
	Slider       float64 `json:"slider"`
	Refresh      int     `json:"refresh"`
}

// Initial combines the date and time of day into the window start in UTC
func (r PressureProfileRequest) Initial() (time.Time, error) {
	day, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cannot parse date %q", ErrInvalidPressureProfile, r.Date)
	}

	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 || r.Second < 0 || r.Second > 59 {
		return time.Time{}, fmt.Errorf("%w: time %02d:%02d:%02d out of range", ErrInvalidPressureProfile, r.Hour, r.Minute, r.Second)
	}

	if r.Slider < 0 || r.Slider > PressureWindowLength.Seconds() {
		return time.Time{}, fmt.Errorf("%w: slider %v outside the window", ErrInvalidPressureProfile, r.Slider)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), r.Hour, r.Minute, r.Second, 0, time.UTC), nil
}

// PressureWindow is the barometer data of one window with its extreme readings
type PressureWindow struct {
	Frame   *queries.Frame `json:"frame"`
	Minimum float64        `json:"minimum"`
	Maximum float64        `json:"maximum"`
}

type pressureWindowRequest struct {
	Installation string    `json:"installation"`
	Node         *string   `json:"node"`
	Start        time.Time `json:"start"`
	Finish       time.Time `json:"finish"`
}

// PressureSlice returns the one second slice centred slider seconds after initial
func PressureSlice(initial time.Time, slider float64) timerange.Window {
	at := initial.Add(time.Duration(slider * float64(time.Second)))

	return timerange.Window{
		Start:  at.Add(-pressureSliceHalfWidth),
		Finish: at.Add(pressureSliceHalfWidth),
	}
}

// PlotPressureProfile plots the barometer readings at the slider position. The
// surrounding 60 second window is fetched once per window and sliced in memory.
func (s *Service) PlotPressureProfile(ctx context.Context, req PressureProfileRequest) (Result, error) {
	return s.observe("pressure_profile", func() (Result, error) {
		initial, err := req.Initial()
		if err != nil {
			return Result{}, err
		}

		window, err := s.pressureWindow.Call(ctx, pressureWindowRequest{
			Installation: req.Installation,
			Node:         nodeFilter(req.Node),
			Start:        initial,
			Finish:       initial.Add(PressureWindowLength),
		})
		if err != nil {
			return Result{}, err
		}

		slice := PressureSlice(initial, req.Slider)
		frame := &queries.Frame{}

		if window.Frame != nil {
			frame = window.Frame.Between(slice.Start, slice.Finish)
		}

		s.log.WithFields(logrus.Fields{
			"start":  slice.Start.Format(time.RFC3339Nano),
			"finish": slice.Finish.Format(time.RFC3339Nano),
			"rows":   frame.Len(),
		}).Debug("Filtered pressure profile time window for single datetime")

		return Result{Figure: plots.PressureBarChart(frame, window.Minimum, window.Maximum)}, nil
	})
}

func (s *Service) fetchPressureWindow(ctx context.Context, req pressureWindowRequest) (PressureWindow, error) {
	frame, _, err := s.source.GetSensorData(ctx, req.Installation, req.Node, barometer, req.Start, req.Finish)
	if err != nil {
		return PressureWindow{}, err
	}

	if frame == nil {
		frame = &queries.Frame{Rows: []queries.Row{}}
	}

	s.log.WithFields(logrus.Fields{
		"seconds": int(req.Finish.Sub(req.Start).Seconds()),
		"start":   req.Start.Format(time.RFC3339),
		"finish":  req.Finish.Format(time.RFC3339),
	}).Info("Downloaded pressure profile time window")

	minimum, maximum, _ := frame.MinMax()

	return PressureWindow{Frame: frame, Minimum: minimum, Maximum: maximum}, nil
}
