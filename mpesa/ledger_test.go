package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreInsert(t *testing.T) {
	store := NewMemoryStore()

	err := store.Insert(&Transaction{
		CorrelationID: "ws_CO_1",
		Kind:          KindDeposit,
		PhoneNumber:   "254712345678",
		Amount:        500,
	})
	require.NoError(t, err)

	tx, ok := store.Get("ws_CO_1")
	require.True(t, ok)
	assert.Equal(t, StatusPending, tx.Status)
	assert.False(t, tx.CreatedAt.IsZero())
	assert.Nil(t, tx.ResolvedAt)

	// correlation ids are never reused
	err = store.Insert(&Transaction{CorrelationID: "ws_CO_1"})
	assert.Error(t, err)

	err = store.Insert(&Transaction{})
	assert.Error(t, err)
}

func TestMemoryStoreResolveFirstWriterWins(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(&Transaction{CorrelationID: "AG_1", Kind: KindWithdraw, Amount: 100}))

	tx, applied := store.Resolve("AG_1", Resolution{Status: StatusFailed, ResultCode: "1032", ResultDesc: "Request cancelled by user"})
	require.True(t, applied)
	assert.Equal(t, StatusFailed, tx.Status)
	require.NotNil(t, tx.ResolvedAt)
	firstResolvedAt := *tx.ResolvedAt

	// a later success must not overwrite the earlier failure
	tx, applied = store.Resolve("AG_1", Resolution{Status: StatusSuccess, ResultCode: "0", ResultDesc: "ok", Receipt: "XYZ"})
	assert.False(t, applied)
	assert.Equal(t, StatusFailed, tx.Status)
	assert.Equal(t, "1032", tx.ResultCode)
	assert.Empty(t, tx.Receipt)
	require.NotNil(t, tx.ResolvedAt)
	assert.Equal(t, firstResolvedAt, *tx.ResolvedAt)
}

func TestMemoryStoreResolveUnknownID(t *testing.T) {
	store := NewMemoryStore()

	_, applied := store.Resolve("missing", Resolution{Status: StatusSuccess})
	assert.False(t, applied)
}

func TestMemoryStoreResolveSetsReceipt(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(&Transaction{CorrelationID: "ws_CO_2", Kind: KindDeposit, Amount: 250}))

	tx, applied := store.Resolve("ws_CO_2", Resolution{Status: StatusSuccess, ResultCode: "0", ResultDesc: "Success", Receipt: "QBC1XYZ"})
	require.True(t, applied)
	assert.Equal(t, StatusSuccess, tx.Status)
	assert.Equal(t, "QBC1XYZ", tx.Receipt)
	assert.NotNil(t, tx.ResolvedAt)
}

func TestMemoryStoreSnapshots(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(&Transaction{CorrelationID: "a", Amount: 1}))
	require.NoError(t, store.Insert(&Transaction{CorrelationID: "b", Amount: 2}))

	all := store.All()
	assert.Len(t, all, 2)

	// snapshots are copies; mutating them must not touch the ledger
	all[0].Status = StatusFailed
	tx, _ := store.Get(all[0].CorrelationID)
	assert.Equal(t, StatusPending, tx.Status)

	got, ok := store.Get("a")
	require.True(t, ok)
	got.Amount = 999
	tx, _ = store.Get("a")
	assert.Equal(t, float64(1), tx.Amount)
}
