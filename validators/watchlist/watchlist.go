package watchlistValidator

import (
	"stockpredictor/middleware"
	"stockpredictor/validators"

	"github.com/gofiber/fiber/v2"
)

type AddRequest struct {
	StockID uint `json:"stock_id" validate:"required,gt=0"`
}

// Add validator middleware
func Add() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AddRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedWatchlist", reqData)
		return c.Next()
	}
}

// ItemID validator middleware for routes addressing one watchlist entry
func ItemID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return middleware.ValidationErrorResponse(c, map[string]string{"id": "Ensure this value is greater than 0."})
		}

		c.Locals("watchlistId", uint(id))
		return c.Next()
	}
}
