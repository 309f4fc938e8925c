package watchlistRoutes

import (
	watchlistControllers "stockpredictor/controllers/watchlist"
	"stockpredictor/middleware"
	watchlistValidators "stockpredictor/validators/watchlist"

	"github.com/gofiber/fiber/v2"
)

func SetupWatchlistRoutes(app *fiber.App) {
	watchlistGroup := app.Group("/watchlist", middleware.JWTMiddleware, middleware.ActiveUserMiddleware)

	watchlistGroup.Get("/", watchlistControllers.List)
	watchlistGroup.Post("/", watchlistValidators.Add(), watchlistControllers.Add)
	watchlistGroup.Delete("/:id", watchlistValidators.ItemID(), watchlistControllers.Remove)
}
