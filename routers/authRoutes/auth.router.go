package authRoutes

import (
	authControllers "stockpredictor/controllers/auth"
	"stockpredictor/middleware"
	authValidators "stockpredictor/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Get("/login/history", middleware.JWTMiddleware, middleware.ActiveUserMiddleware, authValidators.LoginHistoryList(), authControllers.LoginHistoryList)
	authGroup.Put("/change/login/password", middleware.JWTMiddleware, middleware.ActiveUserMiddleware, authValidators.ChangeLoginPassword(), authControllers.ChangeLoginPassword)
}
