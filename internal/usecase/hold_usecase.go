package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// HoldUseCase reserves funds and settles or returns them.
type HoldUseCase struct {
	core
}

func NewHoldUseCase(d Dependencies) *HoldUseCase {
	return &HoldUseCase{core: newCore(d)}
}

// HoldInput is used both to place and to release a hold.
type HoldInput struct {
	TenantID string
	WalletID string
	HoldID   string
	Amount   int64
}

func (in HoldInput) Validate() error {
	if err := domain.ValidateScope(in.TenantID, in.WalletID); err != nil {
		return err
	}
	if strings.TrimSpace(in.HoldID) == "" {
		return domain.ErrHoldIDRequired
	}
	return domain.ValidateAmount(in.Amount)
}

type CaptureInput struct {
	TenantID    string
	WalletID    string
	HoldID      string
	EntryType   domain.EntryType
	Reference   domain.Reference
	Description string
}

func (in CaptureInput) Validate() error {
	if err := domain.ValidateScope(in.TenantID, in.WalletID); err != nil {
		return err
	}
	if strings.TrimSpace(in.HoldID) == "" {
		return domain.ErrHoldIDRequired
	}
	if in.EntryType == "" || in.EntryType == domain.EntryDebitHoldCapture {
		return nil
	}
	if err := in.EntryType.ValidateFor(domain.DirectionDebit); err != nil {
		return err
	}
	if in.EntryType.Reserved() {
		return fmt.Errorf("%w: %s", domain.ErrReservedEntryType, in.EntryType)
	}
	return nil
}

type HoldResult struct {
	Wallet *domain.Wallet
	Hold   *domain.Hold
	// Entry is set for captures only.
	Entry *domain.Entry
}

// PlaceHold reserves amount against the unheld balance.
func (uc *HoldUseCase) PlaceHold(ctx context.Context, in HoldInput) (*HoldResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result *HoldResult
	err := uc.runner.run(ctx, "hold", func(ctx context.Context, tx Transaction) error {
		wallet, err := uc.walletInTx(ctx, tx, "hold", in.TenantID, in.WalletID)
		if err != nil {
			return err
		}
		if err := wallet.EnsureActive(); err != nil {
			return err
		}

		_, err = uc.stores.Holds.GetTx(ctx, tx, wallet.ID, in.HoldID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", domain.ErrHoldExists, in.HoldID)
		case !errors.Is(err, domain.ErrHoldNotFound):
			return err
		}

		if err := wallet.ValidateHold(in.Amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		expected := wallet.Version
		wallet.ApplyHold(in.Amount, now)

		hold := &domain.Hold{
			ID:        in.HoldID,
			WalletID:  wallet.ID,
			TenantID:  wallet.TenantID,
			Amount:    in.Amount,
			Status:    domain.HoldStatusOpen,
			CreatedAt: now,
		}

		if err := uc.stores.Wallets.UpdateState(ctx, tx, wallet, expected); err != nil {
			return err
		}
		if err := uc.stores.Holds.Create(ctx, tx, hold); err != nil {
			return err
		}
		if err := uc.events.record(ctx, tx, wallet.TenantID, domain.AggregateTypeWallet, wallet.ID, domain.EventTypeHoldPlaced, domain.HoldEvent{
			WalletID: wallet.ID,
			HoldID:   hold.ID,
			Amount:   hold.Amount,
		}, now); err != nil {
			return err
		}

		result = &HoldResult{Wallet: wallet, Hold: hold}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, result.Wallet.ID)
	if uc.metrics != nil {
		uc.metrics.HoldsPlaced.Inc()
	}

	return result, nil
}

// ReleaseHold returns a hold's funds. Only a full release is supported, so
// the amount must equal the held amount.
func (uc *HoldUseCase) ReleaseHold(ctx context.Context, in HoldInput) (*HoldResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result *HoldResult
	err := uc.runner.run(ctx, "release", func(ctx context.Context, tx Transaction) error {
		wallet, err := uc.walletInTx(ctx, tx, "release", in.TenantID, in.WalletID)
		if err != nil {
			return err
		}
		if wallet.Status == domain.WalletStatusClosed {
			return fmt.Errorf("%w: wallet %s is %s", domain.ErrWalletNotActive, wallet.ID, wallet.Status)
		}

		hold, err := uc.stores.Holds.GetTx(ctx, tx, wallet.ID, in.HoldID)
		if err != nil {
			return err
		}
		if hold.Status != domain.HoldStatusOpen {
			return fmt.Errorf("%w: hold %s is %s", domain.ErrHoldClosed, hold.ID, hold.Status)
		}
		if hold.Amount != in.Amount {
			return fmt.Errorf("%w: held %d, requested %d", domain.ErrHoldAmountMismatch, hold.Amount, in.Amount)
		}

		now := time.Now().UTC()
		expected := wallet.Version
		if err := hold.Close(domain.HoldStatusReleased, now); err != nil {
			return err
		}
		wallet.ApplyRelease(hold.Amount, now)

		if err := uc.stores.Wallets.UpdateState(ctx, tx, wallet, expected); err != nil {
			return err
		}
		if err := uc.stores.Holds.Close(ctx, tx, hold); err != nil {
			return err
		}
		if err := uc.events.record(ctx, tx, wallet.TenantID, domain.AggregateTypeWallet, wallet.ID, domain.EventTypeHoldReleased, domain.HoldEvent{
			WalletID: wallet.ID,
			HoldID:   hold.ID,
			Amount:   hold.Amount,
		}, now); err != nil {
			return err
		}

		result = &HoldResult{Wallet: wallet, Hold: hold}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, result.Wallet.ID)
	if uc.metrics != nil {
		uc.metrics.HoldsReleased.Inc()
	}

	return result, nil
}

// CaptureHold settles the full held amount as a debit entry.
func (uc *HoldUseCase) CaptureHold(ctx context.Context, in CaptureInput) (*HoldResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	entryType := in.EntryType
	if entryType == "" {
		entryType = domain.EntryDebitHoldCapture
	}

	var result *HoldResult
	err := uc.runner.run(ctx, "capture", func(ctx context.Context, tx Transaction) error {
		wallet, err := uc.walletInTx(ctx, tx, "capture", in.TenantID, in.WalletID)
		if err != nil {
			return err
		}
		if err := wallet.EnsureActive(); err != nil {
			return err
		}

		hold, err := uc.stores.Holds.GetTx(ctx, tx, wallet.ID, in.HoldID)
		if err != nil {
			return err
		}
		if hold.Status != domain.HoldStatusOpen {
			return fmt.Errorf("%w: hold %s is %s", domain.ErrHoldClosed, hold.ID, hold.Status)
		}
		if err := wallet.ValidateDebit(hold.Amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		expected := wallet.Version
		before := wallet.Balance
		wallet.ApplyCapture(hold.Amount, now)

		entry := &domain.Entry{
			ID:            uc.idGen.Generate(),
			WalletID:      wallet.ID,
			TenantID:      wallet.TenantID,
			EntryType:     entryType,
			Amount:        hold.Amount,
			ReferenceType: in.Reference.Type,
			ReferenceID:   in.Reference.ID,
			Description:   in.Description,
			BalanceBefore: before,
			BalanceAfter:  wallet.Balance,
			WalletVersion: wallet.Version,
			CreatedAt:     now,
		}
		if err := hold.Close(domain.HoldStatusCaptured, now); err != nil {
			return err
		}
		hold.EntryID = entry.ID

		if err := uc.stores.Wallets.UpdateState(ctx, tx, wallet, expected); err != nil {
			return err
		}
		if err := uc.stores.Entries.Create(ctx, tx, entry); err != nil {
			return err
		}
		if err := uc.stores.Holds.Close(ctx, tx, hold); err != nil {
			return err
		}
		if err := uc.events.record(ctx, tx, wallet.TenantID, domain.AggregateTypeWallet, wallet.ID, domain.EventTypeHoldCaptured, domain.HoldEvent{
			WalletID: wallet.ID,
			HoldID:   hold.ID,
			Amount:   hold.Amount,
			EntryID:  entry.ID,
		}, now); err != nil {
			return err
		}

		result = &HoldResult{Wallet: wallet, Hold: hold, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, result.Wallet.ID)
	if uc.metrics != nil {
		uc.metrics.HoldsCaptured.Inc()
		uc.metrics.Mutations.WithLabelValues(string(domain.DirectionDebit), string(entryType)).Inc()
	}

	return result, nil
}

// ListHoldsInput represents input for listing holds.
type ListHoldsInput struct {
	TenantID string
	WalletID string
	Status   domain.HoldStatus
	Limit    int
	Offset   int
}

type HoldPage struct {
	Holds  []*domain.Hold
	Total  int64
	Limit  int
	Offset int
}

func (uc *HoldUseCase) ListHolds(ctx context.Context, in ListHoldsInput) (*HoldPage, error) {
	if in.Status != "" && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown hold status %q", domain.ErrInvalidStatus, in.Status)
	}
	if _, err := uc.guard.Wallet(ctx, "list_holds", in.TenantID, in.WalletID); err != nil {
		return nil, err
	}

	limit, offset := normalizePage(in.Limit, in.Offset)
	holds, err := uc.stores.Holds.ListByWallet(ctx, in.WalletID, in.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.stores.Holds.CountByWallet(ctx, in.WalletID, in.Status)
	if err != nil {
		return nil, err
	}

	return &HoldPage{Holds: holds, Total: total, Limit: limit, Offset: offset}, nil
}
