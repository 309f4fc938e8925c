package middleware

import (
	"errors"

	"stockpredictor/database"
	"stockpredictor/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ActiveUserMiddleware rejects tokens whose user was deleted or deactivated.
// It must run after JWTMiddleware.
func ActiveUserMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
	}

	var user models.User
	err := database.Database.Db.Select("id", "is_active").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}
		log.Error().Err(err).Uint("userId", userID).Msg("User lookup failed")
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking user!", nil)
	}
	if !user.IsActive {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "User account is disabled.", nil)
	}

	return c.Next()
}

