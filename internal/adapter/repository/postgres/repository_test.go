package postgres

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

var (
	walletColumns = []string{"id", "tenant_id", "type", "owner_id", "balance", "pending_balance", "status", "version", "created_at", "updated_at"}
	entryColumns  = []string{"seq", "id", "wallet_id", "tenant_id", "entry_type", "amount", "idempotency_key", "reference_type", "reference_id", "description", "transfer_id", "balance_before", "balance_after", "wallet_version", "created_at"}
)

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx
}

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func TestWalletRepositoryGetByID(t *testing.T) {
	pool := newMockPool(t)
	repo := NewWalletRepository(pool)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery("FROM wallets WHERE id").
		WithArgs("w1").
		WillReturnRows(pgxmock.NewRows(walletColumns).AddRow(
			"w1", "t1", "VENDOR", pgtype.Text{String: "v1", Valid: true},
			int64(100), int64(25), "FROZEN", int64(7), ts(now), ts(now),
		))

	w, err := repo.GetByID(context.Background(), "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.OwnerID != "v1" || w.Balance != 100 || w.PendingBalance != 25 || w.Status != domain.WalletStatusFrozen || w.Version != 7 {
		t.Fatalf("unexpected wallet: %+v", w)
	}

	assertExpectations(t, pool)
}

func TestWalletRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewWalletRepository(pool)

	pool.ExpectQuery("FROM wallets WHERE id").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
}

func TestWalletRepositoryCreateDuplicate(t *testing.T) {
	pool := newMockPool(t)
	repo := NewWalletRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectExec("INSERT INTO wallets").
		WithArgs("w1", "t1", "VENDOR", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "wallets_tenant_type_owner_uidx"})

	w, err := domain.NewWallet("w1", "t1", domain.WalletTypeVendor, "v1", time.Now())
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}
	if err := repo.CreateTx(context.Background(), tx, w); !errors.Is(err, domain.ErrWalletExists) {
		t.Fatalf("expected ErrWalletExists, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestWalletRepositoryUpdateStateVersionConflict(t *testing.T) {
	pool := newMockPool(t)
	repo := NewWalletRepository(pool)
	tx := beginMockTx(t, pool)

	w := &domain.Wallet{ID: "w1", Balance: 70, Status: domain.WalletStatusActive, Version: 4}
	pool.ExpectExec("UPDATE wallets").
		WithArgs("w1", int64(70), int64(0), "ACTIVE", int64(4), pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateState(context.Background(), tx, w, 3); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	pool.ExpectExec("UPDATE wallets").
		WithArgs("w1", int64(70), int64(0), "ACTIVE", int64(4), pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateState(context.Background(), tx, w, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestWalletRepositorySumBalances(t *testing.T) {
	pool := newMockPool(t)
	repo := NewWalletRepository(pool)

	pool.ExpectQuery("SUM\\(balance\\)").
		WithArgs("t1").
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(pgtype.Numeric{Int: big.NewInt(123456789), Valid: true}))

	total, err := repo.SumBalances(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.String() != "123456789" {
		t.Fatalf("expected 123456789, got %s", total)
	}
}

func TestEntryRepositoryDuplicateKeyIsConflict(t *testing.T) {
	pool := newMockPool(t)
	repo := NewEntryRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectExec("INSERT INTO ledger_entries").
		WithArgs("e1", "w1", "t1", "CREDIT_TOPUP", int64(10), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "ledger_entries_wallet_key_uidx"})

	err := repo.Create(context.Background(), tx, &domain.Entry{
		ID:             "e1",
		WalletID:       "w1",
		TenantID:       "t1",
		EntryType:      domain.EntryCreditTopUp,
		Amount:         10,
		IdempotencyKey: "k1",
		CreatedAt:      time.Now(),
	})
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestEntryRepositoryListForReplayAdvancesCursor(t *testing.T) {
	pool := newMockPool(t)
	repo := NewEntryRepository(pool)
	tx := beginMockTx(t, pool)
	now := time.Now().UTC()

	pool.ExpectQuery("WHERE wallet_id = \\$1 AND seq > \\$2").
		WithArgs("w1", int64(10), int32(2)).
		WillReturnRows(pgxmock.NewRows(entryColumns).
			AddRow(int64(11), "e1", "w1", "t1", "CREDIT_TOPUP", int64(50), pgtype.Text{}, "", "", "", pgtype.Text{}, int64(0), int64(50), int64(2), ts(now)).
			AddRow(int64(15), "e2", "w1", "t1", "DEBIT_FEE", int64(5), pgtype.Text{String: "k", Valid: true}, "", "", "", pgtype.Text{}, int64(50), int64(45), int64(3), ts(now)))

	entries, next, err := repo.ListForReplay(context.Background(), tx, "w1", 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || next != 15 {
		t.Fatalf("expected 2 entries and cursor 15, got %d and %d", len(entries), next)
	}
	if entries[1].SignedAmount() != -5 || entries[1].IdempotencyKey != "k" {
		t.Fatalf("unexpected entry: %+v", entries[1])
	}

	assertExpectations(t, pool)
}

func TestHoldRepositoryCloseAlreadyClosed(t *testing.T) {
	pool := newMockPool(t)
	repo := NewHoldRepository(pool)
	tx := beginMockTx(t, pool)
	closedAt := time.Now()

	pool.ExpectExec("UPDATE holds").
		WithArgs("w1", "h1", "RELEASED", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Close(context.Background(), tx, &domain.Hold{
		ID:       "h1",
		WalletID: "w1",
		Status:   domain.HoldStatusReleased,
		ClosedAt: &closedAt,
	})
	if !errors.Is(err, domain.ErrHoldClosed) {
		t.Fatalf("expected ErrHoldClosed, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestHoldRepositoryGetNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewHoldRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery("FROM holds WHERE wallet_id").WithArgs("w1", "h1").WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetTx(context.Background(), tx, "w1", "h1"); !errors.Is(err, domain.ErrHoldNotFound) {
		t.Fatalf("expected ErrHoldNotFound, got %v", err)
	}
}

func TestIdempotencyRepository(t *testing.T) {
	pool := newMockPool(t)
	repo := NewIdempotencyRepository(pool)
	tx := beginMockTx(t, pool)
	ctx := context.Background()

	pool.ExpectQuery("FROM idempotency_records").WithArgs("w1", "k1").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(ctx, tx, "w1", "k1"); !errors.Is(err, domain.ErrIdempotencyRecordNotFound) {
		t.Fatalf("expected ErrIdempotencyRecordNotFound, got %v", err)
	}

	pool.ExpectExec("INSERT INTO idempotency_records").
		WithArgs("w1", "k1", "e1", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	err := repo.Create(ctx, tx, &domain.IdempotencyRecord{Key: "k1", WalletID: "w1", ResultEntryID: "e1", CreatedAt: time.Now()})
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	pool.ExpectExec("DELETE FROM idempotency_records").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	n, err := repo.DeleteBefore(ctx, time.Now())
	if err != nil || n != 3 {
		t.Fatalf("expected 3 deleted rows, got %d (%v)", n, err)
	}

	assertExpectations(t, pool)
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func TestRepositoriesRejectForeignTransactions(t *testing.T) {
	pool := newMockPool(t)
	repo := NewWalletRepository(pool)

	if _, err := repo.GetByIDTx(context.Background(), foreignTx{}, "w1"); err == nil {
		t.Fatalf("expected error for foreign transaction")
	}
}
