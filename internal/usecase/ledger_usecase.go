package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// LedgerUseCase is the credit/debit path: every settled balance change goes
// through Mutate.
type LedgerUseCase struct {
	core
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(d Dependencies) *LedgerUseCase {
	return &LedgerUseCase{core: newCore(d)}
}

// MutateInput describes a single credit or debit.
type MutateInput struct {
	TenantID       string
	WalletID       string
	Direction      domain.Direction
	Amount         int64
	EntryType      domain.EntryType
	IdempotencyKey string
	Reference      domain.Reference
	Description    string
}

// Validate checks the input without touching storage.
func (in MutateInput) Validate() error {
	if err := domain.ValidateScope(in.TenantID, in.WalletID); err != nil {
		return err
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	if err := in.EntryType.ValidateFor(in.Direction); err != nil {
		return err
	}
	if in.EntryType.Reserved() {
		return fmt.Errorf("%w: %s", domain.ErrReservedEntryType, in.EntryType)
	}
	return domain.ValidateIdempotencyKey(in.IdempotencyKey)
}

// MutateResult is the outcome of Mutate. IsDuplicate marks a replay.
type MutateResult struct {
	Entry       *domain.Entry
	Wallet      *domain.Wallet
	IsDuplicate bool
}

// Mutate applies a credit or debit exactly once per idempotency key.
func (uc *LedgerUseCase) Mutate(ctx context.Context, in MutateInput) (*MutateResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result *MutateResult
	err := uc.runner.run(ctx, "mutate", func(ctx context.Context, tx Transaction) error {
		result = nil

		wallet, err := uc.walletInTx(ctx, tx, "mutate", in.TenantID, in.WalletID)
		if err != nil {
			return err
		}
		if err := wallet.EnsureActive(); err != nil {
			return err
		}

		original, err := uc.idem.lookup(ctx, tx, wallet.ID, in.IdempotencyKey)
		if err != nil {
			return err
		}
		if original != nil {
			if original.TransferID != "" {
				return fmt.Errorf("%w: key %q belongs to transfer %s", domain.ErrIdempotencyKeyReused, in.IdempotencyKey, original.TransferID)
			}
			if original.EntryType != in.EntryType || original.Amount != in.Amount {
				return domain.ErrIdempotencyKeyReused
			}
			result = &MutateResult{Entry: original, Wallet: wallet, IsDuplicate: true}
			return nil
		}

		if in.Direction == domain.DirectionDebit {
			if err := wallet.ValidateDebit(in.Amount); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		expected := wallet.Version
		before := wallet.Balance
		if in.Direction == domain.DirectionDebit {
			wallet.ApplyDebit(in.Amount, now)
		} else {
			wallet.ApplyCredit(in.Amount, now)
		}

		entry := &domain.Entry{
			ID:             uc.idGen.Generate(),
			WalletID:       wallet.ID,
			TenantID:       wallet.TenantID,
			EntryType:      in.EntryType,
			Amount:         in.Amount,
			IdempotencyKey: in.IdempotencyKey,
			ReferenceType:  in.Reference.Type,
			ReferenceID:    in.Reference.ID,
			Description:    in.Description,
			BalanceBefore:  before,
			BalanceAfter:   wallet.Balance,
			WalletVersion:  wallet.Version,
			CreatedAt:      now,
		}

		if err := uc.stores.Wallets.UpdateState(ctx, tx, wallet, expected); err != nil {
			return err
		}
		if err := uc.stores.Entries.Create(ctx, tx, entry); err != nil {
			return err
		}
		if err := uc.idem.remember(ctx, tx, wallet.ID, in.IdempotencyKey, entry.ID, now); err != nil {
			return err
		}

		eventType := domain.EventTypeWalletCredited
		if in.Direction == domain.DirectionDebit {
			eventType = domain.EventTypeWalletDebited
		}
		if err := uc.events.record(ctx, tx, wallet.TenantID, domain.AggregateTypeWallet, wallet.ID, eventType, domain.WalletMutatedEvent{
			WalletID:      wallet.ID,
			EntryID:       entry.ID,
			EntryType:     string(entry.EntryType),
			Amount:        entry.Amount,
			BalanceAfter:  entry.BalanceAfter,
			ReferenceType: entry.ReferenceType,
			ReferenceID:   entry.ReferenceID,
		}, now); err != nil {
			return err
		}

		result = &MutateResult{Entry: entry, Wallet: wallet}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.IsDuplicate {
		if uc.metrics != nil {
			uc.metrics.DuplicateReplays.WithLabelValues("mutate").Inc()
		}
		return result, nil
	}

	uc.invalidate(ctx, result.Wallet.ID)
	if uc.metrics != nil {
		uc.metrics.Mutations.WithLabelValues(string(in.Direction), string(in.EntryType)).Inc()
		uc.metrics.MutationAmount.WithLabelValues(string(in.Direction)).Observe(float64(in.Amount))
	}

	return result, nil
}
