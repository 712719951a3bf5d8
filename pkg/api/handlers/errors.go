package handlers

import (
	"context"
	"errors"

	"github.com/ethpandaops/aerosense/pkg/dashboard"
	"github.com/ethpandaops/aerosense/pkg/selectors"
	"github.com/ethpandaops/aerosense/pkg/timerange"
	"github.com/gofiber/fiber/v3"
)

// ErrInvalidQuery is returned for a malformed query parameter
var ErrInvalidQuery = errors.New("invalid query parameter")

// ErrInvalidBody is returned when the request body is not a selector state
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "request body must be a selector state")

//nolint:gochecknoglobals // error classification table
var badRequestErrors = []error{
	ErrInvalidQuery,
	timerange.ErrInvalidTimeRange,
	selectors.ErrUnknownSelector,
	selectors.ErrUnknownTab,
	dashboard.ErrUnknownSensorType,
	dashboard.ErrUnknownMetric,
	dashboard.ErrInvalidPressureProfile,
}

// httpError maps a service error onto a response status
func (s *Server) httpError(err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithError(err).Warn("Warehouse query timed out")
		return fiber.NewError(fiber.StatusGatewayTimeout, "warehouse query timed out")
	}

	s.log.WithError(err).Error("Warehouse query failed")

	return fiber.NewError(fiber.StatusBadGateway, "warehouse query failed: "+err.Error())
}
