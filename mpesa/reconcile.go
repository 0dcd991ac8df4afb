package mpesa

import (
	"context"
	"log"
	"strings"
)

// StatusQuerier is the slice of the STK gateway the reconciler needs.
type StatusQuerier interface {
	QueryStatus(ctx context.Context, checkoutRequestID string) (*QueryResult, error)
}

// Recorder persists a durable row for a reconciled transaction. Failures are
// logged, never fatal; the in-memory ledger stays authoritative.
type Recorder interface {
	Record(tx Transaction) error
}

// Safaricom signals an unsettled push with this marker in ResultDesc.
const stillProcessingMarker = "still under processing"

// Reconciler resolves client status queries. Resolved entries are returned
// straight from the ledger; pending ones trigger a single provider re-query.
// Every external call it makes is allowed to fail without corrupting ledger
// state.
type Reconciler struct {
	Store    Store
	Querier  StatusQuerier
	Recorder Recorder
}

// ResolveStatus returns the current view of a transaction. Unknown ids fall
// back to a direct provider query, which covers transactions initiated
// before a process restart.
func (r *Reconciler) ResolveStatus(ctx context.Context, correlationID string) (Transaction, error) {
	tx, ok := r.Store.Get(correlationID)
	if !ok {
		return r.providerFallback(ctx, correlationID)
	}
	if tx.Status != StatusPending {
		return tx, nil
	}

	log.Printf("[MPESA] transaction %s is pending, querying provider", correlationID)
	result, err := r.Querier.QueryStatus(ctx, correlationID)
	if err != nil {
		// Transient query failure must never flip a transaction to failed;
		// surface the stale pending view instead.
		log.Printf("[MPESA] status query for %s failed: %v", correlationID, err)
		return tx, nil
	}

	switch {
	case result.ResultCode == "0":
		resolved, applied := r.Store.Resolve(correlationID, Resolution{
			Status:     StatusSuccess,
			ResultCode: result.ResultCode,
			ResultDesc: result.ResultDesc,
		})
		if applied {
			log.Printf("[MPESA] transaction %s resolved via query: success", correlationID)
			r.record(resolved)
		}
		return resolved, nil
	case strings.Contains(result.ResultDesc, stillProcessingMarker):
		log.Printf("[MPESA] transaction %s still under processing", correlationID)
		return tx, nil
	default:
		resolved, applied := r.Store.Resolve(correlationID, Resolution{
			Status:     StatusFailed,
			ResultCode: result.ResultCode,
			ResultDesc: result.ResultDesc,
		})
		if applied {
			log.Printf("[MPESA] transaction %s resolved via query: failed (%s)", correlationID, result.ResultDesc)
		}
		return resolved, nil
	}
}

// record writes the durable ledger row for a reconciled success. Only
// transactions with a known owner are recorded.
func (r *Reconciler) record(tx Transaction) {
	if r.Recorder == nil || tx.UserID == 0 {
		return
	}
	if err := r.Recorder.Record(tx); err != nil {
		log.Printf("[MPESA] failed to record transaction %s to database: %v", tx.CorrelationID, err)
	}
}

// providerFallback builds a best-effort view for an id the ledger has never
// seen. The result is not inserted into the ledger.
func (r *Reconciler) providerFallback(ctx context.Context, correlationID string) (Transaction, error) {
	result, err := r.Querier.QueryStatus(ctx, correlationID)
	if err != nil {
		return Transaction{}, ErrNotFound
	}

	tx := Transaction{
		CorrelationID: correlationID,
		Status:        StatusFailed,
		ResultCode:    result.ResultCode,
		ResultDesc:    result.ResultDesc,
	}
	if result.ResultCode == "0" {
		tx.Status = StatusSuccess
	}
	return tx, nil
}
