package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/adapter/repository/postgres"
	"github.com/iho/walletledger/internal/domain"
	infrapg "github.com/iho/walletledger/internal/infrastructure/postgres"
	"github.com/iho/walletledger/internal/usecase"
)

const migrationsPath = "../../../infrastructure/postgres/migrations"

// newIntegrationEngine connects to TEST_DATABASE_URL, migrates it and
// truncates every table.
func newIntegrationEngine(t *testing.T) (*usecase.Engine, *pgxpool.Pool) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, infrapg.NewMigrator(dbURL, migrationsPath, zerolog.Nop()).Up())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 20, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE wallets, ledger_entries, holds, idempotency_records, outbox_events, audit_logs CASCADE`)
	require.NoError(t, err)

	engine := usecase.NewEngine(usecase.Dependencies{
		Stores: usecase.Stores{
			TxManager:   postgres.NewTxManager(pool),
			Wallets:     postgres.NewWalletRepository(pool),
			Entries:     postgres.NewEntryRepository(pool),
			Holds:       postgres.NewHoldRepository(pool),
			Idempotency: postgres.NewIdempotencyRepository(pool),
			Outbox:      postgres.NewOutboxRepository(pool),
			Audit:       postgres.NewAuditRepository(pool),
		},
		Retrier: postgres.NewRetrierWithConfig(postgres.RetrierConfig{
			MaxRetries:      50,
			InitialInterval: time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			MaxElapsedTime:  30 * time.Second,
		}),
		IDGen: postgres.NewULIDGenerator(),
	})
	return engine, pool
}

func createWallet(t *testing.T, engine *usecase.Engine, tenant string, walletType domain.WalletType, owner string) *domain.Wallet {
	t.Helper()
	res, err := engine.Execute(context.Background(), usecase.CreateWalletCommand{TenantID: tenant, Type: walletType, OwnerID: owner})
	require.NoError(t, err)
	return res.Wallet
}

func TestIntegration_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	engine, _ := newIntegrationEngine(t)
	ctx := context.Background()

	w := createWallet(t, engine, "t1", domain.WalletTypeCustomer, "c-1")
	_, err := engine.Execute(ctx, usecase.CreditCommand{TenantID: "t1", WalletID: w.ID, Amount: 300, EntryType: domain.EntryCreditTopUp})
	require.NoError(t, err)

	const attempts = 50
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()
			_, err := engine.Execute(ctx, usecase.DebitCommand{TenantID: "t1", WalletID: w.ID, Amount: 10, EntryType: domain.EntryDebitPurchase})
			switch {
			case err == nil:
				succeeded.Add(1)
			case domain.KindOf(err) == domain.KindInsufficientBalance:
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(30), succeeded.Load())
	assert.Equal(t, int32(20), rejected.Load())

	got, err := engine.Wallets().GetWallet(ctx, "t1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)

	res, err := engine.Execute(ctx, usecase.RecalculateCommand{TenantID: "t1", WalletID: w.ID})
	require.NoError(t, err)
	assert.True(t, res.Report.Consistent())
	assert.Equal(t, int64(31), res.Report.EntryCount)
}

func TestIntegration_ConcurrentReplaysApplyOnce(t *testing.T) {
	engine, pool := newIntegrationEngine(t)
	ctx := context.Background()

	w := createWallet(t, engine, "t1", domain.WalletTypeVendor, "v-1")

	const attempts = 20
	var (
		wg         sync.WaitGroup
		duplicates atomic.Int32
	)
	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()
			res, err := engine.Execute(ctx, usecase.CreditCommand{
				TenantID:       "t1",
				WalletID:       w.ID,
				Amount:         100,
				EntryType:      domain.EntryCreditSaleProceeds,
				IdempotencyKey: "sale-1",
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if res.IsDuplicate {
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(attempts-1), duplicates.Load())

	got, err := engine.Wallets().GetWallet(ctx, "t1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Balance)

	var outbox int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox_events WHERE aggregate_id = $1`, w.ID).Scan(&outbox))
	assert.GreaterOrEqual(t, outbox, 2, "wallet creation and the credit are both published")
}

func TestIntegration_TransferAndHoldLifecycle(t *testing.T) {
	engine, _ := newIntegrationEngine(t)
	ctx := context.Background()

	customer := createWallet(t, engine, "t1", domain.WalletTypeCustomer, "c-1")
	platform := createWallet(t, engine, "t1", domain.WalletTypePlatform, "")
	other := createWallet(t, engine, "t2", domain.WalletTypePlatform, "")

	_, err := engine.Execute(ctx, usecase.CreditCommand{TenantID: "t1", WalletID: customer.ID, Amount: 500, EntryType: domain.EntryCreditTopUp})
	require.NoError(t, err)

	_, err = engine.Execute(ctx, usecase.HoldCommand{TenantID: "t1", WalletID: customer.ID, HoldID: "h1", Amount: 200})
	require.NoError(t, err)

	_, err = engine.Execute(ctx, usecase.TransferCommand{TenantID: "t1", FromWalletID: customer.ID, ToWalletID: platform.ID, Amount: 300, IdempotencyKey: "tr-1"})
	require.NoError(t, err)

	// Balance is 200 with 200 held; the hold can still be captured.
	res, err := engine.Execute(ctx, usecase.CaptureCommand{TenantID: "t1", WalletID: customer.ID, HoldID: "h1"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Wallet.Balance)
	assert.Equal(t, int64(0), res.Wallet.PendingBalance)

	_, err = engine.Execute(ctx, usecase.TransferCommand{TenantID: "t1", FromWalletID: platform.ID, ToWalletID: other.ID, Amount: 1, IdempotencyKey: "tr-2"})
	require.Error(t, err)
	assert.Equal(t, domain.KindOwnership, domain.KindOf(err))

	report, err := engine.Reconciliation().ReconcileTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.WalletsChecked)
	assert.Empty(t, report.Discrepancies)
	assert.Equal(t, "300", report.TotalStoredBalance.String())
}

func TestIntegration_StaleVersionIsRejected(t *testing.T) {
	engine, pool := newIntegrationEngine(t)
	ctx := context.Background()

	w := createWallet(t, engine, "t1", domain.WalletTypeCustomer, "c-1")

	repo := postgres.NewWalletRepository(pool)
	tx, err := postgres.NewTxManager(pool).Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	stale := *w
	stale.Balance = 42
	err = repo.UpdateState(ctx, tx, &stale, w.Version+7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVersionConflict))
}
