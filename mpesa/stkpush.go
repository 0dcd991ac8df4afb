package mpesa

import (
	"context"
	"encoding/base64"
	"log"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
)

// STKPush wraps the Daraja push-payment (deposit) endpoints.
type STKPush struct {
	auth        *Auth
	client      *resty.Client
	endpoints   Endpoints
	shortcode   string
	passkey     string
	callbackURL string
}

func NewSTKPush(auth *Auth, env, shortcode, passkey, callbackBaseURL string) *STKPush {
	return &STKPush{
		auth:        auth,
		client:      resty.New().SetTimeout(30 * time.Second),
		endpoints:   EndpointsFor(env),
		shortcode:   shortcode,
		passkey:     passkey,
		callbackURL: callbackBaseURL + "/api/mpesa/callback/deposit",
	}
}

// PushResult is the provider's immediate answer to an STK push request.
// CheckoutRequestID is the correlation id the callback and status query use.
type PushResult struct {
	CheckoutRequestID   string
	MerchantRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}

// QueryResult mirrors the stkpushquery response. Daraja returns the codes as
// strings here, unlike the numeric codes in callbacks.
type QueryResult struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

// providerError is the error body Daraja sends on rejected requests.
type providerError struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// timestampNow renders the request timestamp in the YYYYMMDDHHmmss form the
// password derivation requires.
func timestampNow() string {
	return time.Now().Format("20060102150405")
}

// password per Daraja: Base64(Shortcode + Passkey + Timestamp)
func (s *STKPush) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(s.shortcode + s.passkey + timestamp))
}

// InitiatePush asks Safaricom to prompt the phone for payment. phone must
// already be in canonical 254 form. The amount is floored because M-Pesa
// does not support fractional units.
func (s *STKPush) InitiatePush(ctx context.Context, phone string, amount float64, accountReference string) (*PushResult, error) {
	token, err := s.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := timestampNow()
	body := map[string]interface{}{
		"BusinessShortCode": s.shortcode,
		"Password":          s.password(timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            int64(math.Floor(amount)),
		"PartyA":            phone,
		"PartyB":            s.shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       s.callbackURL,
		"AccountReference":  accountReference,
		"TransactionDesc":   "Deposit to " + accountReference,
	}

	log.Printf("[MPESA] initiating STK push: phone=%s amount=%.2f", phone, amount)

	var out struct {
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		MerchantRequestID   string `json:"MerchantRequestID"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
		CustomerMessage     string `json:"CustomerMessage"`
	}
	var apiErr providerError
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(s.endpoints.STKPush)
	if err != nil {
		return nil, &RequestError{Op: "stkpush", Message: "Failed to initiate STK Push"}
	}
	if resp.IsError() {
		msg := apiErr.ErrorMessage
		if msg == "" {
			msg = "Failed to initiate STK Push"
		}
		return nil, &RequestError{Op: "stkpush", Message: msg}
	}

	return &PushResult{
		CheckoutRequestID:   out.CheckoutRequestID,
		MerchantRequestID:   out.MerchantRequestID,
		ResponseCode:        out.ResponseCode,
		ResponseDescription: out.ResponseDescription,
		CustomerMessage:     out.CustomerMessage,
	}, nil
}

// QueryStatus asks Safaricom for the current state of an STK push. Same
// auth, timestamp and password scheme as the push itself.
func (s *STKPush) QueryStatus(ctx context.Context, checkoutRequestID string) (*QueryResult, error) {
	token, err := s.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := timestampNow()
	body := map[string]interface{}{
		"BusinessShortCode": s.shortcode,
		"Password":          s.password(timestamp),
		"Timestamp":         timestamp,
		"CheckoutRequestID": checkoutRequestID,
	}

	var out QueryResult
	var apiErr providerError
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(s.endpoints.STKQuery)
	if err != nil {
		return nil, &RequestError{Op: "stkquery", Message: "Failed to query transaction status"}
	}
	if resp.IsError() {
		msg := apiErr.ErrorMessage
		if msg == "" {
			msg = "Failed to query transaction status"
		}
		return nil, &RequestError{Op: "stkquery", Message: msg}
	}

	return &out, nil
}
