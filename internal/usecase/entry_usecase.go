package usecase

import (
	"context"

	"github.com/iho/walletledger/internal/domain"
)

// EntryUseCase handles entry business logic.
type EntryUseCase struct {
	core
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(d Dependencies) *EntryUseCase {
	return &EntryUseCase{core: newCore(d)}
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	TenantID  string
	WalletID  string
	EntryType domain.EntryType
	Limit     int
	Offset    int
}

// EntryPage is one page of ledger entries, newest first.
type EntryPage struct {
	Entries []*domain.Entry
	Total   int64
	Limit   int
	Offset  int
}

// ListEntries lists a wallet's ledger entries, optionally filtered by type.
func (uc *EntryUseCase) ListEntries(ctx context.Context, in ListEntriesInput) (*EntryPage, error) {
	if in.EntryType != "" {
		if _, err := domain.ParseEntryType(string(in.EntryType)); err != nil {
			return nil, err
		}
	}

	if _, err := uc.guard.Wallet(ctx, "list_entries", in.TenantID, in.WalletID); err != nil {
		return nil, err
	}

	limit, offset := normalizePage(in.Limit, in.Offset)
	entries, err := uc.stores.Entries.ListByWallet(ctx, in.WalletID, in.EntryType, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.stores.Entries.CountByWallet(ctx, in.WalletID, in.EntryType)
	if err != nil {
		return nil, err
	}

	return &EntryPage{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}
