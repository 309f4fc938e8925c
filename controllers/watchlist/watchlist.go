package watchlistController

import (
	"errors"

	"stockpredictor/database"
	"stockpredictor/middleware"
	"stockpredictor/models"
	watchlistValidator "stockpredictor/validators/watchlist"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func currentUser(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userId").(uint)
	return userID, ok
}

// List returns the caller's watchlist, newest first.
func List(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var items []models.Watchlist
	err := database.Database.Db.Preload("Stock").
		Where("user_id = ?", userID).
		Order("added_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return middleware.ErrorResponse(c, err, 0)
	}
	return c.JSON(items)
}

func Add(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedWatchlist").(*watchlistValidator.AddRequest)
	if !ok {
		return middleware.ErrorMessage(c, fiber.StatusBadRequest, "Invalid request body!")
	}

	db := database.Database.Db

	var stock models.Stock
	if err := db.First(&stock, reqData.StockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorMessage(c, fiber.StatusBadRequest, "Stock not found.")
		}
		return middleware.ErrorResponse(c, err, 0)
	}

	// the (user, stock) unique index rejects concurrent duplicates too
	item := models.Watchlist{UserID: userID, StockID: stock.ID}
	if err := db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.ErrorMessage(c, fiber.StatusBadRequest, "Stock is already in your watchlist.")
		}
		return middleware.ErrorResponse(c, err, 0)
	}
	item.Stock = stock

	log.Info().Uint("userId", userID).Str("ticker", stock.Ticker).Msg("Added to watchlist")
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Remove deletes one of the caller's entries. Other users' entries look missing.
func Remove(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	id, ok := c.Locals("watchlistId").(uint)
	if !ok {
		return middleware.ErrorMessage(c, fiber.StatusBadRequest, "Invalid watchlist id!")
	}

	res := database.Database.Db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Watchlist{})
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, 0)
	}
	if res.RowsAffected == 0 {
		return middleware.ErrorMessage(c, fiber.StatusNotFound, "Not found.")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
