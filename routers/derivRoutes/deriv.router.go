package derivRoutes

import (
	derivController "codecash/controllers/deriv"
	"codecash/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupDerivRoutes(app *fiber.App, handler *derivController.Handler) {
	derivGroup := app.Group("/api/deriv")

	derivGroup.Get("/balance", middleware.JWTMiddleware, handler.Balance)
}
