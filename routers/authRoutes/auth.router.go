package authRoutes

import (
	authController "codecash/controllers/auth"
	"codecash/middleware"
	authValidator "codecash/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/register", authValidator.Register(), authController.Register)
	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Post("/update", middleware.JWTMiddleware, authController.UpdateProfile)
	authGroup.Post("/change-password", authValidator.ChangePassword(), middleware.JWTMiddleware, authController.ChangePassword)
	authGroup.Post("/forgot-password", authValidator.ForgotPassword(), authController.ForgotPassword)
	authGroup.Post("/reset-password", authValidator.ResetPassword(), authController.ResetPassword)
}
