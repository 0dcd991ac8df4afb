package transactionRoutes

import (
	transactionController "codecash/controllers/transactions"
	"codecash/middleware"
	transactionValidator "codecash/validators/transaction"

	"github.com/gofiber/fiber/v2"
)

func SetupTransactionRoutes(app *fiber.App) {
	transactionGroup := app.Group("/api/transactions")

	transactionGroup.Get("/:userId", middleware.JWTMiddleware, transactionController.GetHistory)
	transactionGroup.Post("/", transactionValidator.Record(), middleware.JWTMiddleware, transactionController.Record)
}
