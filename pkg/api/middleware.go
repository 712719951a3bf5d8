package api

import (
	"errors"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/sirupsen/logrus"
)

const (
	apiPrefix  = "/api/v1"
	healthPath = apiPrefix + "/healthz"
)

func setupMiddleware(app *fiber.App, log logrus.FieldLogger) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"panic":  e,
			}).Errorf("Recovered from panic\n%s", debug.Stack())
		},
	}))

	// Probes hit healthz every few seconds
	app.Use(logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthPath
		},
		Format: "[${time}] ${status} - ${method} ${path}?${queryParams} (${latency})\n",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	// Plot payloads are cached server side; browsers must always ask again
	app.Use(apiPrefix, func(c fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Next()
	})
}

// errorHandler renders every error as {"error", "code"}
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
