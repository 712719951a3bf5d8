package handlers

import (
	"fmt"
	"strconv"

	"github.com/ethpandaops/aerosense/pkg/dashboard"
	"github.com/ethpandaops/aerosense/pkg/timerange"
	"github.com/gofiber/fiber/v3"
)

// PlotInformationSensors handles GET /api/v1/plots/information-sensors
func (s *Server) PlotInformationSensors(c fiber.Ctx) error {
	req, err := sensorPlotRequest(c)
	if err != nil {
		return s.httpError(err)
	}

	result, err := s.dashboard.PlotInformationSensors(c.Context(), req)
	if err != nil {
		return s.httpError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// PlotSensors handles GET /api/v1/plots/sensors
func (s *Server) PlotSensors(c fiber.Ctx) error {
	req, err := sensorPlotRequest(c)
	if err != nil {
		return s.httpError(err)
	}

	result, err := s.dashboard.PlotSensors(c.Context(), req)
	if err != nil {
		return s.httpError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// PlotPressureProfile handles GET /api/v1/plots/pressure-profile
func (s *Server) PlotPressureProfile(c fiber.Ctx) error {
	req := dashboard.PressureProfileRequest{
		Installation: c.Query("installation"),
		Node:         c.Query("node"),
		Date:         c.Query("date"),
	}

	var err error

	for key, dest := range map[string]*int{
		"hour":    &req.Hour,
		"minute":  &req.Minute,
		"second":  &req.Second,
		"refresh": &req.Refresh,
	} {
		if *dest, err = queryInt(c, key); err != nil {
			return s.httpError(err)
		}
	}

	if raw := c.Query("slider"); raw != "" {
		if req.Slider, err = strconv.ParseFloat(raw, 64); err != nil {
			return s.httpError(fmt.Errorf("%w: slider %q", ErrInvalidQuery, raw))
		}
	}

	result, err := s.dashboard.PlotPressureProfile(c.Context(), req)
	if err != nil {
		return s.httpError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// PurgeCache handles DELETE /api/v1/cache
func (s *Server) PurgeCache(c fiber.Ctx) error {
	if err := s.dashboard.Purge(c.Context()); err != nil {
		s.log.WithError(err).Error("Failed to purge cache")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to purge cache")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func sensorPlotRequest(c fiber.Ctx) (dashboard.SensorPlotRequest, error) {
	refresh, err := queryInt(c, "refresh")
	if err != nil {
		return dashboard.SensorPlotRequest{}, err
	}

	return dashboard.SensorPlotRequest{
		Installation: c.Query("installation"),
		Node:         c.Query("node"),
		YAxis:        c.Query("y_axis"),
		TimeRange:    timerange.Tag(c.Query("time_range", string(timerange.LastDay))),
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
		Refresh:      refresh,
	}, nil
}

func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidQuery, key, raw)
	}

	return v, nil
}
