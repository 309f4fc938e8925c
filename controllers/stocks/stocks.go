package stockController

import (
	"errors"

	"stockpredictor/database"
	"stockpredictor/middleware"
	"stockpredictor/models"
	"stockpredictor/services"
	stockValidator "stockpredictor/validators/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type priceRow struct {
	Date       string `json:"date"`
	OpenPrice  string `json:"open_price"`
	ClosePrice string `json:"close_price"`
	HighPrice  string `json:"high_price"`
	LowPrice   string `json:"low_price"`
	Volume     int64  `json:"volume"`
}

func ListStocks(c *fiber.Ctx) error {
	var stocks []models.Stock
	if err := database.Database.Db.Order("ticker").Find(&stocks).Error; err != nil {
		return middleware.ErrorResponse(c, err, 0)
	}
	return c.JSON(stocks)
}

func CreateStock(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStock").(*stockValidator.CreateStockRequest)
	if !ok {
		return middleware.ErrorMessage(c, fiber.StatusBadRequest, "Invalid request body!")
	}

	db := database.Database.Db
	err := db.Where("ticker = ?", reqData.Ticker).First(&models.Stock{}).Error
	if err == nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"ticker": "stock with this ticker already exists."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.ErrorResponse(c, err, 0)
	}

	stock := models.Stock{
		Ticker:      reqData.Ticker,
		CompanyName: reqData.CompanyName,
		Sector:      reqData.Sector,
	}
	if err := db.Create(&stock).Error; err != nil {
		return middleware.ErrorResponse(c, err, 0)
	}

	log.Info().Str("ticker", stock.Ticker).Msg("Stock created")
	return c.Status(fiber.StatusCreated).JSON(stock)
}

// History returns stored daily bars newest first, fetching them on first use.
func History(c *fiber.Ctx) error {
	prices, err := services.App.History.Get(c.UserContext(), c.Params("ticker"))
	if err != nil {
		return middleware.ErrorResponse(c, err, 0)
	}

	rows := make([]priceRow, len(prices))
	for i, p := range prices {
		rows[i] = priceRow{
			Date:       p.Day().Format("2006-01-02"),
			OpenPrice:  p.OpenPrice.StringFixed(2),
			ClosePrice: p.ClosePrice.StringFixed(2),
			HighPrice:  p.HighPrice.StringFixed(2),
			LowPrice:   p.LowPrice.StringFixed(2),
			Volume:     p.Volume,
		}
	}
	return c.JSON(rows)
}
