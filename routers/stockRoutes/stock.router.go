package stockRoutes

import (
	stockControllers "stockpredictor/controllers/stocks"
	"stockpredictor/middleware"
	stockValidators "stockpredictor/validators/stock"

	"github.com/gofiber/fiber/v2"
)

func SetupStockRoutes(app *fiber.App) {
	stockGroup := app.Group("/apps", middleware.JWTMiddleware, middleware.ActiveUserMiddleware)

	stockGroup.Get("/", stockControllers.ListStocks)
	stockGroup.Post("/", stockValidators.CreateStock(), stockControllers.CreateStock)
	stockGroup.Get("/:ticker/history", stockControllers.History)
	stockGroup.Get("/:ticker/predict/arima", stockControllers.PredictARIMA)
	stockGroup.Get("/:ticker/predict/lstm", stockControllers.PredictLSTM)
}
