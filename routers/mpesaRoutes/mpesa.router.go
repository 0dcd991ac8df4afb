package mpesaRoutes

import (
	mpesaController "codecash/controllers/mpesa"
	mpesaValidator "codecash/validators/mpesa"

	"github.com/gofiber/fiber/v2"
)

func SetupMpesaRoutes(app *fiber.App, handler *mpesaController.Handler) {
	mpesaGroup := app.Group("/api/mpesa")

	mpesaGroup.Post("/deposit", mpesaValidator.Deposit(), handler.Deposit)
	mpesaGroup.Post("/withdraw", mpesaValidator.Withdraw(), handler.Withdraw)

	// Provider webhooks; unauthenticated by contract
	mpesaGroup.Post("/callback/deposit", handler.DepositCallback)
	mpesaGroup.Post("/callback/withdraw", handler.WithdrawCallback)
	mpesaGroup.Post("/timeout", handler.Timeout)

	mpesaGroup.Get("/status/:id", handler.Status)

	// Development-only ledger dump
	mpesaGroup.Get("/transactions", handler.Transactions)
}
