package sentimentRoutes

import (
	sentimentControllers "stockpredictor/controllers/sentiment"

	"github.com/gofiber/fiber/v2"
)

func SetupSentimentRoutes(app *fiber.App) {
	app.Get("/stocks/:ticker/sentiment", sentimentControllers.Sentiment)
}
