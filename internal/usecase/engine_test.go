package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/adapter/repository/memory"
	"github.com/iho/walletledger/internal/adapter/repository/postgres"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/usecase"
)

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
)

type harness struct {
	store   *memory.Store
	engine  *usecase.Engine
	metrics *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.New()
	m := metrics.New(prometheus.NewRegistry())
	engine := usecase.NewEngine(usecase.Dependencies{
		Stores: store.Stores(),
		Retrier: postgres.NewRetrierWithConfig(postgres.RetrierConfig{
			MaxRetries:      5,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  time.Second,
		}),
		IDGen:   memory.NewSequenceGenerator("id"),
		Metrics: m,
	})

	return &harness{store: store, engine: engine, metrics: m}
}

func (h *harness) exec(t *testing.T, cmd usecase.Command) *usecase.Result {
	t.Helper()
	res, err := h.engine.Execute(context.Background(), cmd)
	require.NoError(t, err)
	return res
}

func (h *harness) wallet(t *testing.T, tenant string, typ domain.WalletType, owner string) *domain.Wallet {
	t.Helper()
	return h.exec(t, usecase.CreateWalletCommand{TenantID: tenant, Type: typ, OwnerID: owner}).Wallet
}

func (h *harness) credit(t *testing.T, tenant, walletID string, amount int64, key string) *usecase.Result {
	t.Helper()
	return h.exec(t, usecase.CreditCommand{
		TenantID:       tenant,
		WalletID:       walletID,
		Amount:         amount,
		EntryType:      domain.EntryCreditSaleProceeds,
		IdempotencyKey: key,
	})
}

func (h *harness) get(t *testing.T, tenant, walletID string) *domain.Wallet {
	t.Helper()
	w, err := h.engine.Wallets().GetWallet(context.Background(), tenant, walletID)
	require.NoError(t, err)
	return w
}

func (h *harness) requireConsistent(t *testing.T, tenant, walletID string) *usecase.ReconciliationReport {
	t.Helper()
	report := h.exec(t, usecase.RecalculateCommand{TenantID: tenant, WalletID: walletID}).Report
	require.True(t, report.Consistent(), "wallet %s drifted: %+v", walletID, report)
	return report
}

func TestCreditThenDebit(t *testing.T) {
	h := newHarness(t)
	w := h.wallet(t, tenantA, domain.WalletTypeVendor, "vendor-1")
	require.Equal(t, int64(0), w.Balance)

	res := h.credit(t, tenantA, w.ID, 100, "")
	require.Equal(t, int64(100), res.Wallet.Balance)
	require.Equal(t, domain.EntryCreditSaleProceeds, res.Entry.EntryType)

	res = h.exec(t, usecase.DebitCommand{
		TenantID:  tenantA,
		WalletID:  w.ID,
		Amount:    30,
		EntryType: domain.EntryDebitPayout,
	})
	require.Equal(t, int64(70), res.Wallet.Balance)
	require.Equal(t, int64(100), res.Entry.BalanceBefore)
	require.Equal(t, int64(70), res.Entry.BalanceAfter)

	report := h.requireConsistent(t, tenantA, w.ID)
	require.Equal(t, int64(2), report.EntryCount)
	require.Equal(t, int64(70), report.ComputedBalance)
}

func TestHoldAndRelease(t *testing.T) {
	h := newHarness(t)
	w := h.wallet(t, tenantA, domain.WalletTypeCustomer, "cust-1")
	h.credit(t, tenantA, w.ID, 70, "")

	res := h.exec(t, usecase.HoldCommand{TenantID: tenantA, WalletID: w.ID, HoldID: "order-1", Amount: 25})
	require.Equal(t, int64(25), res.Wallet.PendingBalance)
	require.Equal(t, int64(70), res.Wallet.Balance)
	require.Equal(t, domain.HoldStatusOpen, res.Hold.Status)

	res = h.exec(t, usecase.ReleaseCommand{TenantID: tenantA, WalletID: w.ID, HoldID: "order-1", Amount: 25})
	require.Equal(t, int64(0), res.Wallet.PendingBalance)
	require.Equal(t, int64(70), res.Wallet.Balance)
	require.Equal(t, domain.HoldStatusReleased, res.Hold.Status)
	require.NotNil(t, res.Hold.ClosedAt)

	h.requireConsistent(t, tenantA, w.ID)
}

func TestDebitInsufficientBalance(t *testing.T) {
	h := newHarness(t)
	w := h.wallet(t, tenantA, domain.WalletTypeVendor, "vendor-1")
	h.credit(t, tenantA, w.ID, 70, "")

	_, err := h.engine.Execute(context.Background(), usecase.DebitCommand{
		TenantID:  tenantA,
		WalletID:  w.ID,
		Amount:    10000,
		EntryType: domain.EntryDebitPayout,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	require.Equal(t, domain.KindInsufficientBalance, domain.KindOf(err))
	require.Equal(t, int64(70), h.get(t, tenantA, w.ID).Balance)
}

func TestTransferIsIdempotent(t *testing.T) {
	h := newHarness(t)
	x := h.wallet(t, tenantA, domain.WalletTypeCustomer, "x")
	y := h.wallet(t, tenantA, domain.WalletTypeVendor, "y")
	h.credit(t, tenantA, x.ID, 100, "")

	cmd := usecase.TransferCommand{
		TenantID:       tenantA,
		FromWalletID:   x.ID,
		ToWalletID:     y.ID,
		Amount:         20,
		IdempotencyKey: "checkout-42",
		Description:    "order 42",
	}

	first := h.exec(t, cmd).Transfer
	require.False(t, first.IsDuplicate)
	require.Equal(t, int64(80), first.FromWallet.Balance)
	require.Equal(t, int64(20), first.ToWallet.Balance)
	require.Equal(t, domain.EntryDebitTransferOut, first.DebitEntry.EntryType)
	require.Equal(t, domain.EntryCreditTransferIn, first.CreditEntry.EntryType)
	require.Equal(t, first.TransferID, first.CreditEntry.TransferID)

	second := h.exec(t, cmd).Transfer
	require.True(t, second.IsDuplicate)
	require.Equal(t, first.DebitEntry.ID, second.DebitEntry.ID)
	require.Equal(t, first.CreditEntry.ID, second.CreditEntry.ID)

	require.Equal(t, int64(80), h.get(t, tenantA, x.ID).Balance)
	require.Equal(t, int64(20), h.get(t, tenantA, y.ID).Balance)

	xEntries, err := h.engine.Entries().ListEntries(context.Background(), usecase.ListEntriesInput{TenantID: tenantA, WalletID: x.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), xEntries.Total)
	yEntries, err := h.engine.Entries().ListEntries(context.Background(), usecase.ListEntriesInput{TenantID: tenantA, WalletID: y.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), yEntries.Total)

	h.requireConsistent(t, tenantA, x.ID)
	h.requireConsistent(t, tenantA, y.ID)
}

func TestFrozenWalletRejectsCredit(t *testing.T) {
	h := newHarness(t)
	w := h.wallet(t, tenantA, domain.WalletTypeVendor, "vendor-1")

	h.exec(t, usecase.UpdateStatusCommand{TenantID: tenantA, WalletID: w.ID, Status: domain.WalletStatusFrozen})

	_, err := h.engine.Execute(context.Background(), usecase.CreditCommand{
		TenantID:  tenantA,
		WalletID:  w.ID,
		Amount:    10,
		EntryType: domain.EntryCreditRefund,
	})
	require.ErrorIs(t, err, domain.ErrWalletNotActive)
	require.Equal(t, int64(0), h.get(t, tenantA, w.ID).Balance)

	h.exec(t, usecase.UpdateStatusCommand{TenantID: tenantA, WalletID: w.ID, Status: domain.WalletStatusActive})
	res := h.credit(t, tenantA, w.ID, 10, "")
	require.Equal(t, int64(10), res.Wallet.Balance)

	logs := h.store.AuditLogs()
	require.Len(t, logs, 2)
	require.Equal(t, domain.AuditActionWalletStatusChange, logs[0].Action)
}
