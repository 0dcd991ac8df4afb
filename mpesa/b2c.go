package mpesa

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
)

// B2C wraps the Daraja business-to-customer payout endpoint used for
// withdrawals.
type B2C struct {
	auth               *Auth
	client             *resty.Client
	endpoints          Endpoints
	shortcode          string
	initiatorName      string
	securityCredential string
	resultURL          string
	timeoutURL         string
}

func NewB2C(auth *Auth, env, shortcode, initiatorName, securityCredential, callbackBaseURL string) *B2C {
	return &B2C{
		auth:               auth,
		client:             resty.New().SetTimeout(30 * time.Second),
		endpoints:          EndpointsFor(env),
		shortcode:          shortcode,
		initiatorName:      initiatorName,
		securityCredential: securityCredential,
		resultURL:          callbackBaseURL + "/api/mpesa/callback/withdraw",
		timeoutURL:         callbackBaseURL + "/api/mpesa/timeout",
	}
}

// TransferResult is the provider's immediate answer to a payout request.
// ConversationID is the correlation id the result callback carries.
type TransferResult struct {
	ConversationID           string
	OriginatorConversationID string
	ResponseCode             string
	ResponseDescription      string
}

// InitiateTransfer moves funds from the business shortcode to the given
// phone. phone must already be in canonical 254 form; the amount is floored.
func (b *B2C) InitiateTransfer(ctx context.Context, phone string, amount float64, remarks string) (*TransferResult, error) {
	token, err := b.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"InitiatorName":      b.initiatorName,
		"SecurityCredential": b.securityCredential,
		"CommandID":          "BusinessPayment",
		"Amount":             int64(math.Floor(amount)),
		"PartyA":             b.shortcode,
		"PartyB":             phone,
		"Remarks":            remarks,
		"QueueTimeOutURL":    b.timeoutURL,
		"ResultURL":          b.resultURL,
		"Occassion":          "Withdrawal",
	}

	log.Printf("[MPESA] initiating B2C transfer: phone=%s amount=%.2f initiator=%s", phone, amount, b.initiatorName)

	var out struct {
		ConversationID           string `json:"ConversationID"`
		OriginatorConversationID string `json:"OriginatorConversationID"`
		ResponseCode             string `json:"ResponseCode"`
		ResponseDescription      string `json:"ResponseDescription"`
	}
	var apiErr providerError
	resp, err := b.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(b.endpoints.B2C)
	if err != nil {
		return nil, &RequestError{Op: "b2c", Message: "Failed to initiate B2C transfer"}
	}
	if resp.IsError() {
		msg := apiErr.ErrorMessage
		if msg == "" {
			msg = "Failed to initiate B2C transfer"
		}
		return nil, &RequestError{Op: "b2c", Message: msg}
	}

	return &TransferResult{
		ConversationID:           out.ConversationID,
		OriginatorConversationID: out.OriginatorConversationID,
		ResponseCode:             out.ResponseCode,
		ResponseDescription:      out.ResponseDescription,
	}, nil
}
