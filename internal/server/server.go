// Package server assembles the Fiber application.
package server

import (
	"strings"

	"github.com/azattello/cargo3589-server/internal/metrics"
	"github.com/azattello/cargo3589-server/internal/middleware"
	"github.com/azattello/cargo3589-server/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Options struct {
	CORSOrigins  []string
	BodyLimit    int
	ContractsDir string
	JWTSecret    string
}

func New(opts Options, svc *settings.Service, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    opts.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(opts.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))

	app.Static("/uploads/contracts", opts.ContractsDir)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := svc.Ping(c.UserContext()); err != nil {
			log.Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")
	settings.Register(api.Group("/settings"), svc, opts.JWTSecret)

	return app
}
