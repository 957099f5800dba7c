package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository. db is usually a *pgxpool.Pool.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{queries: generated.New(db)}
}

// CreateTx inserts a wallet inside tx.
func (r *WalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateWallet(ctx, generated.CreateWalletParams{
		ID:             wallet.ID,
		TenantID:       wallet.TenantID,
		Type:           string(wallet.Type),
		OwnerID:        textOrNull(wallet.OwnerID),
		Balance:        wallet.Balance,
		PendingBalance: wallet.PendingBalance,
		Status:         string(wallet.Status),
		Version:        wallet.Version,
		CreatedAt:      timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(wallet.UpdatedAt),
	})
	if _, dup := uniqueViolation(err); dup {
		return fmt.Errorf("%w: %s wallet for owner %q", domain.ErrWalletExists, wallet.Type, wallet.OwnerID)
	}

	return err
}

// GetByID retrieves a wallet outside any transaction.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	return getWallet(ctx, r.queries, id)
}

// GetByIDTx retrieves a wallet inside tx. Its version is the one a later
// UpdateState compares against.
func (r *WalletRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}
	return getWallet(ctx, queries, id)
}

func getWallet(ctx context.Context, queries *generated.Queries, id string) (*domain.Wallet, error) {
	row, err := queries.GetWalletByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, id)
		}
		return nil, err
	}

	return rowToWallet(row), nil
}

// UpdateState writes the wallet summary guarded by expectedVersion.
func (r *WalletRepository) UpdateState(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet, expectedVersion int64) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateWalletState(ctx, generated.UpdateWalletStateParams{
		ID:              wallet.ID,
		Balance:         wallet.Balance,
		PendingBalance:  wallet.PendingBalance,
		Status:          string(wallet.Status),
		Version:         wallet.Version,
		UpdatedAt:       timeToPgTimestamptz(wallet.UpdatedAt),
		ExpectedVersion: expectedVersion,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// List returns a tenant's wallets in creation order.
func (r *WalletRepository) List(ctx context.Context, tenantID string, filter usecase.WalletFilter, limit, offset int) ([]*domain.Wallet, error) {
	pageLimit, pageOffset := pageArgs(limit, offset)
	rows, err := r.queries.ListWallets(ctx, generated.ListWalletsParams{
		TenantID:   tenantID,
		Type:       string(filter.Type),
		Status:     string(filter.Status),
		OwnerID:    filter.OwnerID,
		PageLimit:  pageLimit,
		PageOffset: pageOffset,
	})
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

func (r *WalletRepository) Count(ctx context.Context, tenantID string, filter usecase.WalletFilter) (int64, error) {
	return r.queries.CountWallets(ctx, generated.CountWalletsParams{
		TenantID: tenantID,
		Type:     string(filter.Type),
		Status:   string(filter.Status),
		OwnerID:  filter.OwnerID,
	})
}

// SumBalances totals the stored balances of a tenant. The SQL sum is NUMERIC.
func (r *WalletRepository) SumBalances(ctx context.Context, tenantID string) (decimal.Decimal, error) {
	total, err := r.queries.SumWalletBalances(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(total)
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:             row.ID,
		TenantID:       row.TenantID,
		Type:           domain.WalletType(row.Type),
		OwnerID:        row.OwnerID.String,
		Balance:        row.Balance,
		PendingBalance: row.PendingBalance,
		Status:         domain.WalletStatus(row.Status),
		Version:        row.Version,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
