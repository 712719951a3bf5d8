package handlers

import (
	"encoding/json"
	"sort"

	"github.com/ethpandaops/aerosense/pkg/selectors"
	"github.com/ethpandaops/aerosense/pkg/timerange"
	"github.com/gofiber/fiber/v3"
)

// Option is a selector option
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ListInstallations handles GET /api/v1/installations
func (s *Server) ListInstallations(c fiber.Ctx) error {
	refresh, err := queryInt(c, "refresh")
	if err != nil {
		return s.httpError(err)
	}

	installations, err := s.dashboard.Installations(c.Context(), refresh)
	if err != nil {
		return s.httpError(err)
	}

	options := make([]Option, 0, len(installations))
	for _, installation := range installations {
		options = append(options, Option{Label: installation.Label(), Value: installation.Reference})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"installations": options,
	})
}

// ListNodes handles GET /api/v1/installations/:installation/nodes
func (s *Server) ListNodes(c fiber.Ctx) error {
	nodes, err := s.dashboard.Nodes(c.Context(), c.Params("installation"))
	if err != nil {
		return s.httpError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"nodes": nodes,
	})
}

// ListSensorTypes handles GET /api/v1/sensor-types
func (s *Server) ListSensorTypes(c fiber.Ctx) error {
	sensorTypes, err := s.dashboard.SensorTypes(c.Context())
	if err != nil {
		return s.httpError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sensor_types": sensorTypes,
	})
}

// ListTimeRanges handles GET /api/v1/time-ranges
func (s *Server) ListTimeRanges(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"time_ranges": timerange.Tags(),
		"default":     timerange.LastDay,
	})
}

// ListTabs handles GET /api/v1/tabs
func (s *Server) ListTabs(c fiber.Ctx) error {
	tabs := s.dashboard.Tabs()

	names := make([]string, 0, len(tabs))
	for name := range tabs {
		names = append(names, name)
	}

	sort.Strings(names)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tabs":     names,
		"controls": tabs,
	})
}

// GetTab handles GET /api/v1/tabs/:section
func (s *Server) GetTab(c fiber.Ctx) error {
	state, err := s.selectors.Dispatch(c.Context(), selectors.State{NavTab: c.Params("section")}, selectors.NavTab)
	if err != nil {
		return s.httpError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"section":  state.NavTab,
		"controls": state.Controls,
	})
}

// DispatchSelector handles POST /api/v1/selectors/:selector. The body is the
// current selector state; the response is the state after the change.
func (s *Server) DispatchSelector(c fiber.Ctx) error {
	var state selectors.State

	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &state); err != nil {
			return ErrInvalidBody
		}
	}

	next, err := s.selectors.Dispatch(c.Context(), state, selectors.Selector(c.Params("selector")))
	if err != nil {
		return s.httpError(err)
	}

	return c.Status(fiber.StatusOK).JSON(next)
}
