package sentimentController

import (
	"stockpredictor/middleware"
	"stockpredictor/services"

	"github.com/gofiber/fiber/v2"
)

func Sentiment(c *fiber.Ctx) error {
	res, err := services.App.Sentiment.Analyze(c.UserContext(), c.Params("ticker"))
	if err != nil {
		return middleware.ErrorResponse(c, err, 0)
	}
	return c.JSON(res)
}
