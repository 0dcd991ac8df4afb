package mpesaValidator

import (
	"codecash/middleware"

	"github.com/gofiber/fiber/v2"
)

// Deposit validates an STK push initiation request
func Deposit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PhoneNumber string  `json:"phoneNumber"`
			Amount      float64 `json:"amount"`
			UserID      uint    `json:"userId"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PhoneNumber == "" {
			errors["phoneNumber"] = "Phone number is required!"
		}
		if reqData.Amount <= 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDeposit", reqData)
		return c.Next()
	}
}

// Withdraw validates a B2C payout initiation request
func Withdraw() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PhoneNumber string  `json:"phoneNumber"`
			Amount      float64 `json:"amount"`
			UserID      uint    `json:"userId"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PhoneNumber == "" {
			errors["phoneNumber"] = "Phone number is required!"
		}
		if reqData.Amount <= 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedWithdraw", reqData)
		return c.Next()
	}
}
