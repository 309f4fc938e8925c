package stockValidator

import (
	"stockpredictor/middleware"
	"stockpredictor/services"
	"stockpredictor/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateStockRequest struct {
	Ticker      string `json:"ticker" validate:"required,max=10"`
	CompanyName string `json:"company_name" validate:"required,max=100"`
	Sector      string `json:"sector" validate:"max=50"`
}

// CreateStock validator middleware
func CreateStock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateStockRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		// whitespace-only tickers pass the required rule
		reqData.Ticker = services.NormalizeTicker(reqData.Ticker)
		if reqData.Ticker == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"ticker": "This field is required."})
		}

		c.Locals("validatedStock", reqData)
		return c.Next()
	}
}
