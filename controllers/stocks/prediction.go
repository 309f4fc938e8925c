package stockController

import (
	"stockpredictor/middleware"
	"stockpredictor/services"

	"github.com/gofiber/fiber/v2"
)

// forecastError reports every workflow failure of a prediction as 400.
func forecastError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	if services.KindOf(err) == services.KindUnknown {
		status = 0
	}
	return middleware.ErrorResponse(c, err, status)
}

func PredictARIMA(c *fiber.Ctx) error {
	out, err := services.App.Forecast.PredictARIMA(c.UserContext(), c.Params("ticker"))
	if err != nil {
		return forecastError(c, err)
	}
	return c.JSON(out)
}

func PredictLSTM(c *fiber.Ctx) error {
	out, err := services.App.Forecast.PredictLSTM(c.UserContext(), c.Params("ticker"))
	if err != nil {
		return forecastError(c, err)
	}
	return c.JSON(out)
}
