package derivController

import (
	"codecash/config"
	"codecash/deriv"
	"codecash/middleware"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// BalanceFetcher is the slice of the Deriv client the handler needs.
type BalanceFetcher interface {
	FetchBalance(ctx context.Context, apiToken string) (*deriv.BalanceInfo, error)
}

type Handler struct {
	Client BalanceFetcher
}

func New(client BalanceFetcher) *Handler {
	return &Handler{Client: client}
}

// Balance fetches the caller's Deriv account balance. The API token comes
// from the X-Deriv-Token header, falling back to the configured one.
func (h *Handler) Balance(c *fiber.Ctx) error {
	token := c.Get("X-Deriv-Token")
	if token == "" {
		token = config.AppConfig.DerivAPIToken
	}
	if token == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Deriv API token is required!", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	info, err := h.Client.FetchBalance(ctx, token)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance fetched!", fiber.Map{
		"balance":  info.Balance,
		"currency": info.Currency,
		"loginId":  info.LoginID,
	})
}
