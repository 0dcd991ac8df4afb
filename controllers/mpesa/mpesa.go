package mpesaController

import (
	"codecash/database"
	"codecash/middleware"
	"codecash/models"
	"codecash/mpesa"
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DepositGateway initiates STK pushes.
type DepositGateway interface {
	InitiatePush(ctx context.Context, phone string, amount float64, accountReference string) (*mpesa.PushResult, error)
}

// WithdrawalGateway initiates B2C payouts.
type WithdrawalGateway interface {
	InitiateTransfer(ctx context.Context, phone string, amount float64, remarks string) (*mpesa.TransferResult, error)
}

// Handler is the wallet façade over the payment engine. Dependencies are
// injected so tests can stub the provider.
type Handler struct {
	Store       mpesa.Store
	Deposits    DepositGateway
	Withdrawals WithdrawalGateway
	Reconciler  *mpesa.Reconciler
}

// accountReference shows up on the customer's payment prompt and statement.
const accountReference = "CODECASH"

func New(store mpesa.Store, stk *mpesa.STKPush, b2c *mpesa.B2C) *Handler {
	return &Handler{
		Store:       store,
		Deposits:    stk,
		Withdrawals: b2c,
		Reconciler: &mpesa.Reconciler{
			Store:    store,
			Querier:  stk,
			Recorder: databaseRecorder{},
		},
	}
}

// Deposit initiates an STK push and inserts a pending ledger entry keyed by
// the returned CheckoutRequestID.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedDeposit").(*struct {
		PhoneNumber string  `json:"phoneNumber"`
		Amount      float64 `json:"amount"`
		UserID      uint    `json:"userId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	phone := mpesa.FormatPhoneNumber(reqData.PhoneNumber)
	log.Printf("[MPESA] deposit request: %s, KES %.2f", phone, reqData.Amount)

	result, err := h.Deposits.InitiatePush(c.Context(), phone, reqData.Amount, accountReference)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	tx := &mpesa.Transaction{
		CorrelationID:     result.CheckoutRequestID,
		Kind:              mpesa.KindDeposit,
		PhoneNumber:       phone,
		Amount:            reqData.Amount,
		UserID:            reqData.UserID,
		Status:            mpesa.StatusPending,
		MerchantRequestID: result.MerchantRequestID,
	}
	if err := h.Store.Insert(tx); err != nil {
		log.Printf("[MPESA] failed to insert ledger entry %s: %v", result.CheckoutRequestID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "STK push initiated!", fiber.Map{
		"checkoutRequestId": result.CheckoutRequestID,
		"merchantRequestId": result.MerchantRequestID,
		"customerMessage":   result.CustomerMessage,
	})
}

// Withdraw initiates a B2C payout and inserts a pending ledger entry keyed
// by the returned ConversationID.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedWithdraw").(*struct {
		PhoneNumber string  `json:"phoneNumber"`
		Amount      float64 `json:"amount"`
		UserID      uint    `json:"userId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	phone := mpesa.FormatPhoneNumber(reqData.PhoneNumber)
	log.Printf("[MPESA] withdrawal request: %s, KES %.2f", phone, reqData.Amount)

	result, err := h.Withdrawals.InitiateTransfer(c.Context(), phone, reqData.Amount, "Withdrawal from "+accountReference)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	tx := &mpesa.Transaction{
		CorrelationID:            result.ConversationID,
		Kind:                     mpesa.KindWithdraw,
		PhoneNumber:              phone,
		Amount:                   reqData.Amount,
		UserID:                   reqData.UserID,
		Status:                   mpesa.StatusPending,
		OriginatorConversationID: result.OriginatorConversationID,
	}
	if err := h.Store.Insert(tx); err != nil {
		log.Printf("[MPESA] failed to insert ledger entry %s: %v", result.ConversationID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "B2C transfer initiated!", fiber.Map{
		"conversationId":           result.ConversationID,
		"originatorConversationId": result.OriginatorConversationID,
	})
}

// DepositCallback receives the asynchronous STK push result. The provider is
// always acknowledged with HTTP 200 regardless of processing outcome.
func (h *Handler) DepositCallback(c *fiber.Ctx) error {
	var payload mpesa.StkCallbackEnvelope
	if err := c.BodyParser(&payload); err != nil || payload.Body.StkCallback.CheckoutRequestID == "" {
		log.Printf("[MPESA] malformed STK callback: %v", err)
		return c.JSON(mpesa.AckError("Error processing callback"))
	}

	mpesa.ApplyCallback(h.Store, payload.Body.StkCallback.Normalize())
	return c.JSON(mpesa.AckSuccess())
}

// WithdrawCallback receives the asynchronous B2C result.
func (h *Handler) WithdrawCallback(c *fiber.Ctx) error {
	var payload mpesa.B2CResultEnvelope
	if err := c.BodyParser(&payload); err != nil || payload.Result.ConversationID == "" {
		log.Printf("[MPESA] malformed B2C callback: %v", err)
		return c.JSON(mpesa.AckError("Error processing callback"))
	}

	mpesa.ApplyCallback(h.Store, payload.Result.Normalize())
	return c.JSON(mpesa.AckSuccess())
}

// Timeout acknowledges the provider's queue-timeout notification. No ledger
// mutation; the status query settles the transaction later.
func (h *Handler) Timeout(c *fiber.Ctx) error {
	log.Printf("[MPESA] timeout callback received")
	return c.JSON(mpesa.Ack{ResultCode: 0, ResultDesc: "Timeout received"})
}

// Status returns the current view of a transaction, re-querying the provider
// for pending ones.
func (h *Handler) Status(c *fiber.Ctx) error {
	id := c.Params("id")

	tx, err := h.Reconciler.ResolveStatus(c.Context(), id)
	if err != nil {
		if errors.Is(err, mpesa.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Transaction not found", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transaction status fetched!", fiber.Map{
		"transaction": tx,
	})
}

// Transactions dumps the full ledger. Development-only surface, no auth.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transactions fetched!", fiber.Map{
		"transactions": h.Store.All(),
	})
}

// databaseRecorder writes reconciled transactions to the durable store.
type databaseRecorder struct{}

func (databaseRecorder) Record(tx mpesa.Transaction) error {
	db := database.Database.Db
	if db == nil {
		return errors.New("database unavailable")
	}

	row := models.Transaction{
		UserID:      tx.UserID,
		Type:        string(tx.Kind),
		Amount:      tx.Amount,
		Status:      string(tx.Status),
		ReferenceID: tx.CorrelationID,
		Timestamp:   time.Now(),
	}
	return db.Create(&row).Error
}
