package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	s *Store
}

func (r *WalletRepository) CreateTx(_ context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if _, err := asTx(tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.wallets[wallet.ID]; ok {
		return fmt.Errorf("%w: id %s", domain.ErrWalletExists, wallet.ID)
	}
	for _, w := range r.s.st.wallets {
		if w.TenantID != wallet.TenantID || w.Type != wallet.Type {
			continue
		}
		if wallet.Type == domain.WalletTypePlatform || w.OwnerID == wallet.OwnerID {
			return fmt.Errorf("%w: %s wallet for owner %q", domain.ErrWalletExists, wallet.Type, wallet.OwnerID)
		}
	}

	r.s.st.wallets[wallet.ID] = *wallet
	r.s.st.walletOrder = append(r.s.st.walletOrder, wallet.ID)
	return nil
}

func (r *WalletRepository) GetByID(_ context.Context, id string) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.get(id)
}

func (r *WalletRepository) GetByIDTx(_ context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.get(id)
}

func (r *WalletRepository) get(id string) (*domain.Wallet, error) {
	w, ok := r.s.st.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &w, nil
}

func (r *WalletRepository) UpdateState(_ context.Context, tx usecase.Transaction, wallet *domain.Wallet, expectedVersion int64) error {
	if _, err := asTx(tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.st.wallets[wallet.ID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	if wallet.Balance < 0 || wallet.PendingBalance < 0 {
		return fmt.Errorf("memory: wallet %s would go negative", wallet.ID)
	}

	stored.Balance = wallet.Balance
	stored.PendingBalance = wallet.PendingBalance
	stored.Status = wallet.Status
	stored.Version = wallet.Version
	stored.UpdatedAt = wallet.UpdatedAt
	r.s.st.wallets[wallet.ID] = stored
	return nil
}

func (r *WalletRepository) List(_ context.Context, tenantID string, filter usecase.WalletFilter, limit, offset int) ([]*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.filter(tenantID, filter)
	if offset >= len(matched) {
		return []*domain.Wallet{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *WalletRepository) Count(_ context.Context, tenantID string, filter usecase.WalletFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filter(tenantID, filter))), nil
}

func (r *WalletRepository) SumBalances(_ context.Context, tenantID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := decimal.Zero
	for _, w := range r.s.st.wallets {
		if w.TenantID == tenantID {
			total = total.Add(decimal.NewFromInt(w.Balance))
		}
	}
	return total, nil
}

func (r *WalletRepository) filter(tenantID string, f usecase.WalletFilter) []*domain.Wallet {
	out := make([]*domain.Wallet, 0)
	for _, id := range r.s.st.walletOrder {
		w, ok := r.s.st.wallets[id]
		if !ok || w.TenantID != tenantID {
			continue
		}
		if f.Type != "" && w.Type != f.Type {
			continue
		}
		if f.Status != "" && w.Status != f.Status {
			continue
		}
		if f.OwnerID != "" && w.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, &w)
	}
	return out
}
