package mpesa

import "fmt"

// Error taxonomy for the payment engine. Validation failures never reach this
// package; they are rejected at the HTTP boundary before any external call.
var (
	// ErrAuth means the OAuth credential exchange with Safaricom failed.
	// Never retried synchronously; the next call re-fetches.
	ErrAuth = fmt.Errorf("failed to authenticate with M-Pesa API")

	// ErrNotFound means a correlation id is unknown to both the ledger and
	// the provider fallback query.
	ErrNotFound = fmt.Errorf("transaction not found")
)

// RequestError is a payment or query request the provider rejected. Message
// carries the provider's own error text when it sent one.
type RequestError struct {
	Op      string // stkpush, b2c, stkquery
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}
