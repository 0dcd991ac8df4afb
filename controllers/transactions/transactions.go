package transactionController

import (
	"codecash/database"
	"codecash/middleware"
	"codecash/models"
	"time"

	"github.com/gofiber/fiber/v2"
)

// GetHistory returns a user's durable transaction history, newest first.
// With no database the history is simply empty; live statuses come from the
// ledger endpoints instead.
func GetHistory(c *fiber.Ctx) error {
	userId, err := c.ParamsInt("userId")
	if err != nil || userId <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
	}

	db := database.Database.Db
	if db == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "History fetched!", fiber.Map{
			"history": []models.Transaction{},
		})
	}

	var history []models.Transaction
	if err := db.Where("user_id = ?", userId).Order("timestamp DESC").Find(&history).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "History fetched!", fiber.Map{
		"history": history,
	})
}

// Record writes a durable transaction row. When the database is down the
// request is acknowledged as local-only rather than failed.
func Record(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRecord").(*struct {
		UserID      uint    `json:"userId"`
		Type        string  `json:"type"`
		Amount      float64 `json:"amount"`
		Status      string  `json:"status"`
		ReferenceID string  `json:"referenceId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if db == nil {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Transaction recorded (local only)", nil)
	}

	row := models.Transaction{
		UserID:      reqData.UserID,
		Type:        reqData.Type,
		Amount:      reqData.Amount,
		Status:      reqData.Status,
		ReferenceID: reqData.ReferenceID,
		Timestamp:   time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record transaction", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Transaction recorded", nil)
}
