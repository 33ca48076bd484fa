package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"signaldesk.com/internal/config"
	"signaldesk.com/internal/domain"
	"signaldesk.com/internal/infra"
)

// Deps HTTP 服务依赖
type Deps struct {
	Config   *config.Config
	DraftSvc domain.DraftService
	Hub      *infra.PreviewHub
	Log      zerolog.Logger
}

func NewServer(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.Config.Server.AppName,
		ErrorHandler: errorHandler,
		// 图片以 data URI 提交
		BodyLimit: 8 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Service is healthy",
		})
	})

	// Initialize WebSocket
	if deps.Hub != nil {
		InitWebsocket(app, deps.Hub, deps.DraftSvc, deps.Log)
	}

	contractHandler := NewContractHandler()
	draftHandler := NewDraftHandler(deps.DraftSvc)

	api := app.Group("/api")

	// Contract Routes
	api.Get("/contracts", contractHandler.GetContracts)
	api.Get("/contracts/:symbol", contractHandler.GetContract)

	// Signal Routes
	api.Post("/signals/preview", draftHandler.PreviewSignal)

	// Draft Routes
	api.Post("/drafts", draftHandler.CreateDraft)
	api.Get("/drafts/:id", draftHandler.GetDraft)
	api.Patch("/drafts/:id", draftHandler.UpdateDraft)
	api.Delete("/drafts/:id", draftHandler.DeleteDraft)
	api.Post("/drafts/:id/reset", draftHandler.ResetDraft)
	api.Post("/drafts/:id/targets", draftHandler.AddTarget)
	api.Put("/drafts/:id/targets/:index", draftHandler.UpdateTarget)
	api.Delete("/drafts/:id/targets/:index", draftHandler.RemoveTarget)
	api.Put("/drafts/:id/image", draftHandler.AttachImage)

	return app
}
