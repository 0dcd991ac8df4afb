package transactionValidator

import (
	"codecash/middleware"

	"github.com/gofiber/fiber/v2"
)

// Record validates a durable transaction record request
func Record() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID      uint    `json:"userId"`
			Type        string  `json:"type"`
			Amount      float64 `json:"amount"`
			Status      string  `json:"status"`
			ReferenceID string  `json:"referenceId"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if reqData.Type != "deposit" && reqData.Type != "withdraw" {
			errors["type"] = "Type must be deposit or withdraw!"
		}
		if reqData.Amount <= 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}
		if reqData.Status == "" {
			errors["status"] = "Status is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRecord", reqData)
		return c.Next()
	}
}
