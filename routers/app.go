// Package routers assembles the HTTP application.
package routers

import (
	systemController "stockpredictor/controllers/system"
	"stockpredictor/middleware"
	"stockpredictor/routers/authRoutes"
	"stockpredictor/routers/sentimentRoutes"
	"stockpredictor/routers/stockRoutes"
	userProfileRoutes "stockpredictor/routers/userRoutes"
	"stockpredictor/routers/watchlistRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the fiber app with every route mounted. Trailing slashes are optional.
func New() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "stockpredictor",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Get("/health", systemController.Health)

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	stockRoutes.SetupStockRoutes(app)
	watchlistRoutes.SetupWatchlistRoutes(app)
	sentimentRoutes.SetupSentimentRoutes(app)

	return app
}

// errorHandler keeps fiber's own errors (404 route, 405) in the {error} shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return middleware.ErrorMessage(c, code, err.Error())
}
