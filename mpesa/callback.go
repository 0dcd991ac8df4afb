package mpesa

import (
	"fmt"
	"log"
	"strconv"
)

// Wire shapes for the asynchronous Daraja callbacks. Field names must match
// the provider payloads exactly.

// StkCallbackEnvelope is the deposit callback: the result nests under
// Body.stkCallback with an optional name/value metadata item array.
type StkCallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem values arrive as strings or numbers depending on the item, so
// Value stays loosely typed until read.
type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// StringValue returns the named metadata item rendered as a string, or ""
// when absent.
func (m *CallbackMetadata) StringValue(name string) string {
	if m == nil {
		return ""
	}
	for _, item := range m.Item {
		if item.Name != name {
			continue
		}
		switch v := item.Value.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
			return ""
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// B2CResultEnvelope is the withdrawal callback: a flatter shape under Result.
type B2CResultEnvelope struct {
	Result B2CResult `json:"Result"`
}

type B2CResult struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResultCode               int    `json:"ResultCode"`
	ResultDesc               string `json:"ResultDesc"`
	TransactionID            string `json:"TransactionID"`
}

// CallbackResult is a provider callback reduced to the fields the ledger
// transition needs, independent of which wire shape delivered it.
type CallbackResult struct {
	CorrelationID string
	ResultCode    int
	ResultDesc    string
	Receipt       string
}

// Normalize flattens the deposit callback. The settlement receipt hides in
// the metadata items under MpesaReceiptNumber.
func (cb StkCallback) Normalize() CallbackResult {
	return CallbackResult{
		CorrelationID: cb.CheckoutRequestID,
		ResultCode:    cb.ResultCode,
		ResultDesc:    cb.ResultDesc,
		Receipt:       cb.CallbackMetadata.StringValue("MpesaReceiptNumber"),
	}
}

// Normalize flattens the withdrawal callback; TransactionID is the
// settlement reference.
func (r B2CResult) Normalize() CallbackResult {
	return CallbackResult{
		CorrelationID: r.ConversationID,
		ResultCode:    r.ResultCode,
		ResultDesc:    r.ResultDesc,
		Receipt:       r.TransactionID,
	}
}

// Ack is the acknowledgment payload Daraja expects from a callback URL.
// Always delivered with HTTP 200 so the provider does not retry.
type Ack struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func AckSuccess() Ack {
	return Ack{ResultCode: 0, ResultDesc: "Success"}
}

func AckError(desc string) Ack {
	return Ack{ResultCode: 1, ResultDesc: desc}
}

// ApplyCallback records a provider result against the ledger. ResultCode
// zero means success. Unknown correlation ids are logged and dropped, and a
// callback that lost the race to an earlier resolution is a no-op; the
// caller acknowledges the provider either way.
func ApplyCallback(store Store, cb CallbackResult) {
	current, ok := store.Get(cb.CorrelationID)
	if !ok {
		log.Printf("[MPESA] callback for unknown transaction %s ignored", cb.CorrelationID)
		return
	}
	if current.Status != StatusPending {
		log.Printf("[MPESA] duplicate callback for %s ignored (already %s)", cb.CorrelationID, current.Status)
		return
	}

	res := Resolution{
		Status:     StatusFailed,
		ResultCode: strconv.Itoa(cb.ResultCode),
		ResultDesc: cb.ResultDesc,
	}
	if cb.ResultCode == 0 {
		res.Status = StatusSuccess
		res.Receipt = cb.Receipt
	}

	if tx, applied := store.Resolve(cb.CorrelationID, res); applied {
		log.Printf("[MPESA] transaction %s resolved via callback: %s", cb.CorrelationID, tx.Status)
	} else {
		log.Printf("[MPESA] callback for %s lost resolution race (now %s)", cb.CorrelationID, tx.Status)
	}
}
