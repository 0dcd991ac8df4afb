package mpesa

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	result *QueryResult
	err    error
	calls  int
}

func (f *fakeQuerier) QueryStatus(ctx context.Context, checkoutRequestID string) (*QueryResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeRecorder struct {
	recorded []Transaction
	err      error
}

func (f *fakeRecorder) Record(tx Transaction) error {
	f.recorded = append(f.recorded, tx)
	return f.err
}

func pendingStore(t *testing.T, userID uint) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, store.Insert(&Transaction{
		CorrelationID: "ws_CO_1",
		Kind:          KindDeposit,
		PhoneNumber:   "254722000111",
		Amount:        500,
		UserID:        userID,
	}))
	return store
}

func TestResolveStatusResolvedShortCircuits(t *testing.T) {
	store := pendingStore(t, 7)
	store.Resolve("ws_CO_1", Resolution{Status: StatusSuccess, ResultCode: "0", ResultDesc: "Success"})

	querier := &fakeQuerier{}
	r := &Reconciler{Store: store, Querier: querier}

	tx, err := r.ResolveStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, tx.Status)
	// no redundant provider call for an already-resolved transaction
	assert.Zero(t, querier.calls)
}

func TestResolveStatusPendingSuccess(t *testing.T) {
	store := pendingStore(t, 7)
	querier := &fakeQuerier{result: &QueryResult{ResultCode: "0", ResultDesc: "The service request is processed successfully."}}
	recorder := &fakeRecorder{}
	r := &Reconciler{Store: store, Querier: querier, Recorder: recorder}

	tx, err := r.ResolveStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, tx.Status)
	assert.NotNil(t, tx.ResolvedAt)

	require.Len(t, recorder.recorded, 1)
	assert.Equal(t, "ws_CO_1", recorder.recorded[0].CorrelationID)
	assert.Equal(t, uint(7), recorder.recorded[0].UserID)
}

func TestResolveStatusAnonymousNotRecorded(t *testing.T) {
	store := pendingStore(t, 0)
	querier := &fakeQuerier{result: &QueryResult{ResultCode: "0", ResultDesc: "ok"}}
	recorder := &fakeRecorder{}
	r := &Reconciler{Store: store, Querier: querier, Recorder: recorder}

	tx, err := r.ResolveStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, tx.Status)
	assert.Empty(t, recorder.recorded)
}

func TestResolveStatusRecorderFailureIsNotFatal(t *testing.T) {
	store := pendingStore(t, 7)
	querier := &fakeQuerier{result: &QueryResult{ResultCode: "0", ResultDesc: "ok"}}
	recorder := &fakeRecorder{err: errors.New("database unavailable")}
	r := &Reconciler{Store: store, Querier: querier, Recorder: recorder}

	tx, err := r.ResolveStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, tx.Status)
}

func TestResolveStatusStillProcessing(t *testing.T) {
	store := pendingStore(t, 7)
	querier := &fakeQuerier{result: &QueryResult{
		ResultCode: "500.001.1001",
		ResultDesc: "The transaction is still under processing, try again later",
	}}
	r := &Reconciler{Store: store, Querier: querier}

	tx, err := r.ResolveStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tx.Status)
	assert.Nil(t, tx.ResolvedAt)
}

func TestResolveStatusPendingFailure(t *testing.T) {
	store := pendingStore(t, 7)
	querier := &fakeQuerier{result: &QueryResult{ResultCode: "1032", ResultDesc: "Request cancelled by user"}}
	recorder := &fakeRecorder{}
	r := &Reconciler{Store: store, Querier: querier, Recorder: recorder}

	tx, err := r.ResolveStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, tx.Status)
	assert.Equal(t, "Request cancelled by user", tx.ResultDesc)
	// failures are not written to the durable store
	assert.Empty(t, recorder.recorded)
}

func TestResolveStatusTransientQueryFailure(t *testing.T) {
	store := pendingStore(t, 7)
	querier := &fakeQuerier{err: errors.New("connection refused")}
	r := &Reconciler{Store: store, Querier: querier}

	tx, err := r.ResolveStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	// a transient provider error surfaces the stale pending view, never failed
	assert.Equal(t, StatusPending, tx.Status)
	assert.Nil(t, tx.ResolvedAt)

	stored, _ := store.Get("ws_CO_1")
	assert.Equal(t, StatusPending, stored.Status)
}

func TestResolveStatusUnknownIDFallback(t *testing.T) {
	store := NewMemoryStore()
	querier := &fakeQuerier{result: &QueryResult{ResultCode: "0", ResultDesc: "ok"}}
	r := &Reconciler{Store: store, Querier: querier}

	tx, err := r.ResolveStatus(context.Background(), "ws_CO_unseen")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_unseen", tx.CorrelationID)
	assert.Equal(t, StatusSuccess, tx.Status)

	// the fallback view is not inserted into the ledger
	_, ok := store.Get("ws_CO_unseen")
	assert.False(t, ok)
}

func TestResolveStatusUnknownIDNotFound(t *testing.T) {
	store := NewMemoryStore()
	querier := &fakeQuerier{err: errors.New("invalid CheckoutRequestID")}
	r := &Reconciler{Store: store, Querier: querier}

	_, err := r.ResolveStatus(context.Background(), "ws_CO_unseen")
	assert.ErrorIs(t, err, ErrNotFound)
}
