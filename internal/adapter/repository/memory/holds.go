package memory

import (
	"context"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// HoldRepository implements usecase.HoldRepository.
type HoldRepository struct {
	s *Store
}

func (r *HoldRepository) Create(_ context.Context, tx usecase.Transaction, hold *domain.Hold) error {
	if _, err := asTx(tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := holdKey{hold.WalletID, hold.ID}
	if _, ok := r.s.st.holds[k]; ok {
		return domain.ErrHoldExists
	}
	r.s.st.holds[k] = *hold
	r.s.st.holdOrder = append(r.s.st.holdOrder, k)
	return nil
}

func (r *HoldRepository) GetTx(_ context.Context, tx usecase.Transaction, walletID, holdID string) (*domain.Hold, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.st.holds[holdKey{walletID, holdID}]
	if !ok {
		return nil, domain.ErrHoldNotFound
	}
	return &h, nil
}

func (r *HoldRepository) Close(_ context.Context, tx usecase.Transaction, hold *domain.Hold) error {
	if _, err := asTx(tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := holdKey{hold.WalletID, hold.ID}
	stored, ok := r.s.st.holds[k]
	if !ok {
		return domain.ErrHoldNotFound
	}
	if stored.Status != domain.HoldStatusOpen {
		return domain.ErrHoldClosed
	}
	stored.Status = hold.Status
	stored.ClosedAt = hold.ClosedAt
	stored.EntryID = hold.EntryID
	r.s.st.holds[k] = stored
	return nil
}

// ListByWallet returns newest holds first.
func (r *HoldRepository) ListByWallet(_ context.Context, walletID string, status domain.HoldStatus, limit, offset int) ([]*domain.Hold, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Hold, 0)
	skipped := 0
	for i := len(r.s.st.holdOrder) - 1; i >= 0 && len(out) < limit; i-- {
		h := r.s.st.holds[r.s.st.holdOrder[i]]
		if h.WalletID != walletID || (status != "" && h.Status != status) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, &h)
	}
	return out, nil
}

func (r *HoldRepository) CountByWallet(_ context.Context, walletID string, status domain.HoldStatus) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, h := range r.s.st.holds {
		if h.WalletID == walletID && (status == "" || h.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r *HoldRepository) SumOpen(_ context.Context, tx usecase.Transaction, walletID string) (int64, error) {
	if _, err := asTx(tx); err != nil {
		return 0, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum int64
	for _, h := range r.s.st.holds {
		if h.WalletID == walletID && h.Status == domain.HoldStatusOpen {
			sum += h.Amount
		}
	}
	return sum, nil
}
