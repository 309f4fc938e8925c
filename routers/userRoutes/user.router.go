package userProfileRoutes

import (
	userProfileController "stockpredictor/controllers/userControllers"
	"stockpredictor/middleware"
	userProfileValidator "stockpredictor/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.ActiveUserMiddleware)

	userGroup.Get("/profile", userProfileController.GetProfile)
	userGroup.Put("/profile", userProfileValidator.UpdateProfile(), userProfileController.UpdateProfile)
}
