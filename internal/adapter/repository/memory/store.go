// Package memory is an in-process implementation of the engine's stores.
// Transactions are serialized and roll back by restoring a snapshot.
// Reads outside a transaction may observe uncommitted writes.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already finished")

type holdKey struct{ walletID, holdID string }

type idemKey struct{ walletID, key string }

type state struct {
	wallets     map[string]domain.Wallet
	walletOrder []string
	entries     []domain.Entry
	holds       map[holdKey]domain.Hold
	holdOrder   []holdKey
	idem        map[idemKey]domain.IdempotencyRecord
}

func newState() state {
	return state{
		wallets: make(map[string]domain.Wallet),
		holds:   make(map[holdKey]domain.Hold),
		idem:    make(map[idemKey]domain.IdempotencyRecord),
	}
}

func (st state) clone() state {
	c := state{
		wallets:     make(map[string]domain.Wallet, len(st.wallets)),
		walletOrder: append([]string(nil), st.walletOrder...),
		entries:     append([]domain.Entry(nil), st.entries...),
		holds:       make(map[holdKey]domain.Hold, len(st.holds)),
		holdOrder:   append([]holdKey(nil), st.holdOrder...),
		idem:        make(map[idemKey]domain.IdempotencyRecord, len(st.idem)),
	}
	for k, v := range st.wallets {
		c.wallets[k] = v
	}
	for k, v := range st.holds {
		c.holds[k] = v
	}
	for k, v := range st.idem {
		c.idem[k] = v
	}
	return c
}

// Store holds all state. Use Stores to obtain the repository views.
// Outbox and audit rows live outside the snapshot: rows written inside a
// transaction are buffered on the Tx and appended on commit.
type Store struct {
	txMu sync.Mutex

	mu     sync.RWMutex
	st     state
	outbox []domain.OutboxEvent
	audit  []domain.AuditLog
}

// New creates an empty Store.
func New() *Store {
	return &Store{st: newState()}
}

// Stores returns every repository view of s.
func (s *Store) Stores() usecase.Stores {
	return usecase.Stores{
		TxManager:   &TxManager{s: s},
		Wallets:     &WalletRepository{s: s},
		Entries:     &EntryRepository{s: s},
		Holds:       &HoldRepository{s: s},
		Idempotency: &IdempotencyRepository{s: s},
		Outbox:      &OutboxRepository{s: s},
		Audit:       &AuditRepository{s: s},
	}
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	s *Store
}

// Begin blocks until no other transaction is running.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	return m.s.begin(ctx)
}

// BeginSnapshot is Begin; serialized transactions already see a stable state.
func (m *TxManager) BeginSnapshot(ctx context.Context) (usecase.Transaction, error) {
	return m.s.begin(ctx)
}

func (s *Store) begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txMu.Lock()

	s.mu.RLock()
	snap := s.st.clone()
	s.mu.RUnlock()

	return &Tx{s: s, snapshot: snap}, nil
}

// Tx is a memory transaction.
type Tx struct {
	s        *Store
	snapshot state
	done     atomic.Bool

	pendingOutbox []domain.OutboxEvent
	pendingAudit  []domain.AuditLog
}

// Commit keeps all writes made since Begin.
func (t *Tx) Commit(_ context.Context) error {
	if !t.done.CompareAndSwap(false, true) {
		return ErrTxDone
	}
	t.s.mu.Lock()
	t.s.outbox = append(t.s.outbox, t.pendingOutbox...)
	t.s.audit = append(t.s.audit, t.pendingAudit...)
	t.s.mu.Unlock()
	t.s.txMu.Unlock()
	return nil
}

// Rollback restores the state captured at Begin.
func (t *Tx) Rollback(_ context.Context) error {
	if !t.done.CompareAndSwap(false, true) {
		return ErrTxDone
	}
	t.s.mu.Lock()
	t.s.st = t.snapshot
	t.s.mu.Unlock()
	t.s.txMu.Unlock()
	return nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: unexpected transaction type %T", tx)
	}
	if t.done.Load() {
		return nil, ErrTxDone
	}
	return t, nil
}
