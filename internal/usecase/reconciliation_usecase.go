package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// ReconciliationUseCase recomputes balances from the ledger. It never writes.
type ReconciliationUseCase struct {
	core
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(d Dependencies) *ReconciliationUseCase {
	return &ReconciliationUseCase{core: newCore(d)}
}

// ReconciliationReport compares a wallet's stored summary with its ledger.
// Drift is stored minus computed.
type ReconciliationReport struct {
	WalletID        string
	TenantID        string
	ComputedBalance int64
	StoredBalance   int64
	EntryCount      int64
	Drift           int64

	ComputedPending int64
	StoredPending   int64
	PendingDrift    int64

	// FirstDivergentEntryID is the first entry whose BalanceBefore does not
	// match the replayed running balance.
	FirstDivergentEntryID string
	CheckedAt             time.Time
}

// Consistent reports whether the wallet matches its ledger and open holds.
func (r *ReconciliationReport) Consistent() bool {
	return r.Drift == 0 && r.PendingDrift == 0 && r.FirstDivergentEntryID == ""
}

// Recalculate replays every entry of the wallet in creation order inside a
// read-only snapshot and reports any discrepancy.
func (uc *ReconciliationUseCase) Recalculate(ctx context.Context, tenantID, walletID string) (*ReconciliationReport, error) {
	if err := domain.ValidateScope(tenantID, walletID); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.stores.TxManager.BeginSnapshot(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallet, err := uc.walletInTx(txCtx, tx, "recalculate", tenantID, walletID)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		WalletID:      wallet.ID,
		TenantID:      wallet.TenantID,
		StoredBalance: wallet.Balance,
		StoredPending: wallet.PendingBalance,
	}

	var cursor int64
	for {
		entries, next, err := uc.stores.Entries.ListForReplay(txCtx, tx, wallet.ID, cursor, replayBatchSize)
		if err != nil {
			return nil, fmt.Errorf("replay entries of wallet %s: %w", wallet.ID, err)
		}
		for _, e := range entries {
			if report.FirstDivergentEntryID == "" && e.BalanceBefore != report.ComputedBalance {
				report.FirstDivergentEntryID = e.ID
			}
			report.ComputedBalance += e.SignedAmount()
			report.EntryCount++
		}
		if len(entries) < replayBatchSize {
			break
		}
		cursor = next
	}

	report.ComputedPending, err = uc.stores.Holds.SumOpen(txCtx, tx, wallet.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	report.Drift = report.StoredBalance - report.ComputedBalance
	report.PendingDrift = report.StoredPending - report.ComputedPending
	report.CheckedAt = time.Now().UTC()

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
	}
	if !report.Consistent() {
		if uc.metrics != nil {
			uc.metrics.ReconciliationDrifts.Inc()
		}
		zerolog.Ctx(ctx).Warn().
			Str("wallet_id", wallet.ID).
			Int64("stored_balance", report.StoredBalance).
			Int64("computed_balance", report.ComputedBalance).
			Int64("drift", report.Drift).
			Int64("pending_drift", report.PendingDrift).
			Str("first_divergent_entry_id", report.FirstDivergentEntryID).
			Msg("wallet drift detected")
	}

	return report, nil
}

// TenantReconciliationReport summarizes Recalculate over every wallet of a tenant.
type TenantReconciliationReport struct {
	TenantID           string
	WalletsChecked     int
	Discrepancies      []*ReconciliationReport
	TotalStoredBalance decimal.Decimal
	CheckedAt          time.Time
}

// ReconcileTenant recalculates every wallet of tenantID.
func (uc *ReconciliationUseCase) ReconcileTenant(ctx context.Context, tenantID string) (*TenantReconciliationReport, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}

	report := &TenantReconciliationReport{
		TenantID:      tenantID,
		Discrepancies: make([]*ReconciliationReport, 0),
	}

	for offset := 0; ; offset += MaxPageSize {
		wallets, err := uc.stores.Wallets.List(ctx, tenantID, WalletFilter{}, MaxPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, w := range wallets {
			r, err := uc.Recalculate(ctx, tenantID, w.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile wallet %s: %w", w.ID, err)
			}
			report.WalletsChecked++
			if !r.Consistent() {
				report.Discrepancies = append(report.Discrepancies, r)
			}
		}
		if len(wallets) < MaxPageSize {
			break
		}
	}

	total, err := uc.stores.Wallets.SumBalances(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	report.TotalStoredBalance = total
	report.CheckedAt = time.Now().UTC()

	return report, nil
}
