package api

import (
	"finsync/docs"
	"finsync/internal/api/handlers"
	"finsync/pkg/config"
	"finsync/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Sync    *handlers.SyncHandler
	Connect *handlers.ConnectHandler
	FX      *handlers.FXHandler
	T212    *handlers.T212Handler
	Cron    *handlers.CronHandler
}

func SetupRouter(h Handlers, server config.ServerConfig, cronSecret string, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  server.ReadTimeout,
		WriteTimeout: server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,x-cron-secret",
	}))
	app.Use(logger.New())

	// Swagger: importing docs registers the OpenAPI document via init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	cron := middleware.CronSecret(cronSecret, appLogger)
	api := app.Group("/api/v1")

	// Bank sync
	api.Post("/sync/gc", h.Sync.Sync)
	api.Get("/sync/gc", cron, h.Sync.CronSync)
	api.Post("/transfers/detect", h.Sync.DetectTransfers)

	// Institutions and the consent flow
	api.Get("/institutions", h.Connect.ListInstitutions)
	api.Get("/institutions/db", h.Connect.StoredInstitutions)
	api.Post("/connect/gc/start", h.Connect.Start)
	api.Get("/connect/gc/callback", h.Connect.Callback)

	// FX
	api.Post("/fx/cnb/sync", h.FX.SyncCNB)
	api.Get("/fx/latest", h.FX.Latest)

	// Trading 212
	t212 := api.Group("/integrations/t212")
	t212.Post("/sync", h.T212.Sync)
	t212.Get("/portfolio", h.T212.Portfolio)
	t212.Get("/cash", h.T212.Cash)
	t212.Get("/transactions", h.T212.Transactions)
	t212.Get("/db/cash", h.T212.StoredCash)
	t212.Get("/db/snapshots", h.T212.Snapshots)

	api.Get("/cron/nightly", cron, h.Cron.Nightly)

	return app
}
