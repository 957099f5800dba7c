package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// TransferUseCase moves funds between two wallets of one tenant atomically.
type TransferUseCase struct {
	core
}

func NewTransferUseCase(d Dependencies) *TransferUseCase {
	return &TransferUseCase{core: newCore(d)}
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	TenantID       string
	FromWalletID   string
	ToWalletID     string
	Amount         int64
	IdempotencyKey string
	Description    string
}

func (in TransferInput) Validate() error {
	if err := domain.ValidateScope(in.TenantID, in.FromWalletID); err != nil {
		return err
	}
	if err := domain.ValidateScope(in.TenantID, in.ToWalletID); err != nil {
		return err
	}
	if in.FromWalletID == in.ToWalletID {
		return domain.ErrSameWallet
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	return domain.ValidateIdempotencyKey(in.IdempotencyKey)
}

// TransferResult holds both legs of a transfer.
type TransferResult struct {
	TransferID  string
	FromWallet  *domain.Wallet
	ToWallet    *domain.Wallet
	DebitEntry  *domain.Entry
	CreditEntry *domain.Entry
	IsDuplicate bool
}

// Transfer debits the source and credits the destination in one transaction.
// The idempotency key is recorded on the source wallet.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result *TransferResult
	err := uc.runner.run(ctx, "transfer", func(ctx context.Context, tx Transaction) error {
		result = nil

		from, err := uc.stores.Wallets.GetByIDTx(ctx, tx, in.FromWalletID)
		if err != nil {
			return err
		}
		to, err := uc.stores.Wallets.GetByIDTx(ctx, tx, in.ToWalletID)
		if err != nil {
			return err
		}
		if err := uc.guard.CheckTransfer(ctx, in.TenantID, from, to); err != nil {
			return err
		}

		if err := from.EnsureActive(); err != nil {
			return err
		}
		if err := to.EnsureActive(); err != nil {
			return err
		}

		replay, err := uc.replay(ctx, tx, in, from, to)
		if err != nil || replay != nil {
			result = replay
			return err
		}

		if err := from.ValidateDebit(in.Amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		transferID := uc.idGen.Generate()
		ref := domain.Reference{Type: domain.AggregateTypeTransfer, ID: transferID}

		fromVersion, toVersion := from.Version, to.Version
		fromBefore, toBefore := from.Balance, to.Balance
		from.ApplyDebit(in.Amount, now)
		to.ApplyCredit(in.Amount, now)

		debit := &domain.Entry{
			ID:             uc.idGen.Generate(),
			WalletID:       from.ID,
			TenantID:       from.TenantID,
			EntryType:      domain.EntryDebitTransferOut,
			Amount:         in.Amount,
			IdempotencyKey: in.IdempotencyKey,
			ReferenceType:  ref.Type,
			ReferenceID:    ref.ID,
			Description:    in.Description,
			TransferID:     transferID,
			BalanceBefore:  fromBefore,
			BalanceAfter:   from.Balance,
			WalletVersion:  from.Version,
			CreatedAt:      now,
		}
		credit := &domain.Entry{
			ID:            uc.idGen.Generate(),
			WalletID:      to.ID,
			TenantID:      to.TenantID,
			EntryType:     domain.EntryCreditTransferIn,
			Amount:        in.Amount,
			ReferenceType: ref.Type,
			ReferenceID:   ref.ID,
			Description:   in.Description,
			TransferID:    transferID,
			BalanceBefore: toBefore,
			BalanceAfter:  to.Balance,
			WalletVersion: to.Version,
			CreatedAt:     now,
		}

		// Write wallets in id order so opposite transfers take row locks consistently.
		updates := []struct {
			wallet   *domain.Wallet
			expected int64
		}{{from, fromVersion}, {to, toVersion}}
		sort.Slice(updates, func(i, j int) bool { return updates[i].wallet.ID < updates[j].wallet.ID })
		for _, u := range updates {
			if err := uc.stores.Wallets.UpdateState(ctx, tx, u.wallet, u.expected); err != nil {
				return err
			}
		}

		if err := uc.stores.Entries.Create(ctx, tx, debit); err != nil {
			return err
		}
		if err := uc.stores.Entries.Create(ctx, tx, credit); err != nil {
			return err
		}
		if err := uc.idem.remember(ctx, tx, from.ID, in.IdempotencyKey, debit.ID, now); err != nil {
			return err
		}
		if err := uc.events.record(ctx, tx, from.TenantID, domain.AggregateTypeTransfer, transferID, domain.EventTypeTransferCompleted, domain.TransferCompletedEvent{
			TransferID:    transferID,
			FromWalletID:  from.ID,
			ToWalletID:    to.ID,
			DebitEntryID:  debit.ID,
			CreditEntryID: credit.ID,
			Amount:        in.Amount,
		}, now); err != nil {
			return err
		}

		result = &TransferResult{
			TransferID:  transferID,
			FromWallet:  from,
			ToWallet:    to,
			DebitEntry:  debit,
			CreditEntry: credit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.IsDuplicate {
		if uc.metrics != nil {
			uc.metrics.DuplicateReplays.WithLabelValues("transfer").Inc()
		}
		return result, nil
	}

	uc.invalidate(ctx, result.FromWallet.ID, result.ToWallet.ID)
	if uc.metrics != nil {
		uc.metrics.TransfersCompleted.Inc()
		uc.metrics.Mutations.WithLabelValues(string(domain.DirectionDebit), string(domain.EntryDebitTransferOut)).Inc()
		uc.metrics.Mutations.WithLabelValues(string(domain.DirectionCredit), string(domain.EntryCreditTransferIn)).Inc()
	}

	return result, nil
}

// replay returns the original transfer for a reused key, or nil if the key is new.
func (uc *TransferUseCase) replay(ctx context.Context, tx Transaction, in TransferInput, from, to *domain.Wallet) (*TransferResult, error) {
	debit, err := uc.idem.lookup(ctx, tx, from.ID, in.IdempotencyKey)
	if err != nil || debit == nil {
		return nil, err
	}
	if debit.TransferID == "" || debit.Amount != in.Amount {
		return nil, fmt.Errorf("%w: key %q", domain.ErrIdempotencyKeyReused, in.IdempotencyKey)
	}

	legs, err := uc.stores.Entries.GetByTransferTx(ctx, tx, debit.TransferID)
	if err != nil {
		return nil, err
	}
	for _, leg := range legs {
		if leg.WalletID == to.ID && leg.EntryType == domain.EntryCreditTransferIn {
			return &TransferResult{
				TransferID:  debit.TransferID,
				FromWallet:  from,
				ToWallet:    to,
				DebitEntry:  debit,
				CreditEntry: leg,
				IsDuplicate: true,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: key %q was used for a transfer to another wallet", domain.ErrIdempotencyKeyReused, in.IdempotencyKey)
}
