package memory

import (
	"context"
	"fmt"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository. An entry's position
// in the store, starting at 1, is its sequence number.
type EntryRepository struct {
	s *Store
}

func (r *EntryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if _, err := asTx(tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.st.entries {
		if e.ID == entry.ID {
			return fmt.Errorf("memory: duplicate entry id %s", entry.ID)
		}
		if entry.IdempotencyKey != "" && e.WalletID == entry.WalletID && e.IdempotencyKey == entry.IdempotencyKey {
			return domain.ErrVersionConflict
		}
	}
	r.s.st.entries = append(r.s.st.entries, *entry)
	return nil
}

func (r *EntryRepository) GetByIDTx(_ context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for i := range r.s.st.entries {
		if r.s.st.entries[i].ID == id {
			e := r.s.st.entries[i]
			return &e, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (r *EntryRepository) GetByTransferTx(_ context.Context, tx usecase.Transaction, transferID string) ([]*domain.Entry, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Entry, 0, 2)
	for _, e := range r.s.st.entries {
		if e.TransferID == transferID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

// ListByWallet returns newest entries first.
func (r *EntryRepository) ListByWallet(_ context.Context, walletID string, entryType domain.EntryType, limit, offset int) ([]*domain.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Entry, 0)
	skipped := 0
	for i := len(r.s.st.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.s.st.entries[i]
		if !matchEntry(e, walletID, entryType) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

func (r *EntryRepository) CountByWallet(_ context.Context, walletID string, entryType domain.EntryType) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, e := range r.s.st.entries {
		if matchEntry(e, walletID, entryType) {
			n++
		}
	}
	return n, nil
}

func (r *EntryRepository) ListForReplay(_ context.Context, tx usecase.Transaction, walletID string, cursor int64, limit int) ([]*domain.Entry, int64, error) {
	if _, err := asTx(tx); err != nil {
		return nil, 0, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Entry, 0, limit)
	next := cursor
	for i := int(cursor); i < len(r.s.st.entries) && len(out) < limit; i++ {
		e := r.s.st.entries[i]
		if e.WalletID != walletID {
			continue
		}
		out = append(out, &e)
		next = int64(i + 1)
	}
	return out, next, nil
}

func matchEntry(e domain.Entry, walletID string, entryType domain.EntryType) bool {
	return e.WalletID == walletID && (entryType == "" || e.EntryType == entryType)
}
