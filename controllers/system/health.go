package systemController

import (
	"context"
	"time"

	"stockpredictor/database"
	"stockpredictor/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func Health(c *fiber.Ctx) error {
	sqlDB, err := database.Database.Db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("Health check failed")
		return middleware.ErrorMessage(c, fiber.StatusServiceUnavailable, "database unavailable")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
