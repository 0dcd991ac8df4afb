package mpesa

import (
	"fmt"
	"sync"
	"time"
)

// Kind distinguishes deposits (STK push) from withdrawals (B2C payout).
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
)

// Status of a ledger entry. Every entry starts Pending and resolves at most
// once.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusTimedOut Status = "timeout"
)

// Transaction is a live ledger entry keyed by the provider correlation id:
// the CheckoutRequestID for deposits, the ConversationID for withdrawals.
// The two namespaces share one keyspace.
type Transaction struct {
	CorrelationID            string     `json:"correlationId"`
	Kind                     Kind       `json:"type"`
	PhoneNumber              string     `json:"phoneNumber"`
	Amount                   float64    `json:"amount"`
	UserID                   uint       `json:"userId,omitempty"`
	Status                   Status     `json:"status"`
	MerchantRequestID        string     `json:"merchantRequestId,omitempty"`
	OriginatorConversationID string     `json:"originatorConversationId,omitempty"`
	ResultCode               string     `json:"resultCode,omitempty"`
	ResultDesc               string     `json:"resultDesc,omitempty"`
	Receipt                  string     `json:"receipt,omitempty"` // MpesaReceiptNumber for deposits, TransactionID for payouts
	CreatedAt                time.Time  `json:"createdAt"`
	ResolvedAt               *time.Time `json:"resolvedAt,omitempty"`
}

// Resolution is the terminal outcome a callback or status query wants to
// apply to a pending entry.
type Resolution struct {
	Status     Status
	ResultCode string
	ResultDesc string
	Receipt    string
}

// Store is the transaction ledger: the process-lifetime record of every
// initiated payment, authoritative for all live status queries.
//
// Resolve applies a resolution only while the entry is still pending, so the
// first writer wins when a callback and a status query race on the same
// correlation id; the loser's write is a no-op.
type Store interface {
	Insert(tx *Transaction) error
	Get(correlationID string) (Transaction, bool)
	Resolve(correlationID string, res Resolution) (Transaction, bool)
	All() []Transaction
}

// MemoryStore keeps the ledger in a mutex-guarded map. Entries are never
// evicted, so a long-running process grows without bound; a restart loses
// pending entries, which the status reconciler papers over with its provider
// fallback. A shared store can replace this for multi-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Transaction)}
}

// Insert adds a new ledger entry. Correlation ids are provider-issued and
// never reused; a duplicate insert is an error.
func (s *MemoryStore) Insert(tx *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.CorrelationID == "" {
		return fmt.Errorf("ledger: empty correlation id")
	}
	if _, exists := s.entries[tx.CorrelationID]; exists {
		return fmt.Errorf("ledger: duplicate correlation id %q", tx.CorrelationID)
	}

	entry := *tx
	if entry.Status == "" {
		entry.Status = StatusPending
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries[entry.CorrelationID] = &entry
	return nil
}

func (s *MemoryStore) Get(correlationID string) (Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[correlationID]
	if !ok {
		return Transaction{}, false
	}
	return *entry, true
}

// Resolve transitions a pending entry to its terminal state under the lock.
// Returns the entry's current state and whether this call performed the
// transition. Already-resolved entries are returned unchanged with false:
// status never flips back to pending and never flips between outcomes.
func (s *MemoryStore) Resolve(correlationID string, res Resolution) (Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[correlationID]
	if !ok {
		return Transaction{}, false
	}
	if entry.Status != StatusPending {
		return *entry, false
	}

	entry.Status = res.Status
	entry.ResultCode = res.ResultCode
	entry.ResultDesc = res.ResultDesc
	if res.Receipt != "" {
		entry.Receipt = res.Receipt
	}
	now := time.Now()
	entry.ResolvedAt = &now
	return *entry, true
}

// All returns a snapshot of every ledger entry, in no particular order.
func (s *MemoryStore) All() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Transaction, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, *entry)
	}
	return out
}
