package userController

import (
	"stockpredictor/database"
	"stockpredictor/middleware"
	"stockpredictor/models"
	userValidator "stockpredictor/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func profileData(user models.User, watching int64) fiber.Map {
	return fiber.Map{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"last_login":      user.LastLogin,
		"date_joined":     user.CreatedAt,
		"watchlist_count": watching,
	}
}

// GetProfile returns the caller's account details.
func GetProfile(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var watching int64
	if err := db.Model(&models.Watchlist{}).Where("user_id = ?", userId).Count(&watching).Error; err != nil {
		log.Error().Err(err).Uint("userId", userId).Msg("Watchlist count failed")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User profile.", profileData(user, watching))
}

// UpdateProfile changes the caller's email address.
func UpdateProfile(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if err := db.Model(&user).Update("email", reqData.Email).Error; err != nil {
		log.Error().Err(err).Uint("userId", userId).Msg("Profile update failed")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}
	user.Email = reqData.Email

	var watching int64
	db.Model(&models.Watchlist{}).Where("user_id = ?", userId).Count(&watching)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", profileData(user, watching))
}
