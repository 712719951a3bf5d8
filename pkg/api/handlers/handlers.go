// Package handlers implements the dashboard HTTP API handlers
package handlers

import (
	"context"

	"github.com/ethpandaops/aerosense/pkg/dashboard"
	"github.com/ethpandaops/aerosense/pkg/queries"
	"github.com/ethpandaops/aerosense/pkg/selectors"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// Dashboard is the plot and option lookup service behind the API
type Dashboard interface {
	Installations(ctx context.Context, refresh int) ([]queries.Installation, error)
	Nodes(ctx context.Context, installation string) ([]string, error)
	SensorTypes(ctx context.Context) ([]dashboard.SensorTypeOption, error)
	Tabs() map[string][]string
	PlotInformationSensors(ctx context.Context, req dashboard.SensorPlotRequest) (dashboard.Result, error)
	PlotSensors(ctx context.Context, req dashboard.SensorPlotRequest) (dashboard.Result, error)
	PlotPressureProfile(ctx context.Context, req dashboard.PressureProfileRequest) (dashboard.Result, error)
	Purge(ctx context.Context) error
}

// Dispatcher applies selector changes
type Dispatcher interface {
	Dispatch(ctx context.Context, state selectors.State, changed selectors.Selector) (selectors.State, error)
}

// Server holds the API handlers
type Server struct {
	dashboard Dashboard
	selectors Dispatcher
	openAPI   []byte
	log       logrus.FieldLogger
}

// NewServer creates a new API server instance
func NewServer(dash Dashboard, dispatcher Dispatcher, openAPI []byte, log logrus.FieldLogger) *Server {
	return &Server{
		dashboard: dash,
		selectors: dispatcher,
		openAPI:   openAPI,
		log:       log.WithField("component", "api.handlers"),
	}
}

// RegisterHandlers registers every route on router
func RegisterHandlers(router fiber.Router, s *Server) {
	router.Get("/healthz", s.GetHealth)
	router.Get("/openapi.json", s.GetOpenAPI)

	router.Get("/installations", s.ListInstallations)
	router.Get("/installations/:installation/nodes", s.ListNodes)
	router.Get("/sensor-types", s.ListSensorTypes)
	router.Get("/time-ranges", s.ListTimeRanges)
	router.Get("/tabs", s.ListTabs)
	router.Get("/tabs/:section", s.GetTab)

	router.Post("/selectors/:selector", s.DispatchSelector)

	router.Get("/plots/information-sensors", s.PlotInformationSensors)
	router.Get("/plots/sensors", s.PlotSensors)
	router.Get("/plots/pressure-profile", s.PlotPressureProfile)

	router.Delete("/cache", s.PurgeCache)
}

// GetHealth handles GET /api/v1/healthz
func (s *Server) GetHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// GetOpenAPI handles GET /api/v1/openapi.json
func (s *Server) GetOpenAPI(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Send(s.openAPI)
}
