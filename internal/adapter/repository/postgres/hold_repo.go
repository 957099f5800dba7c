package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// HoldRepository implements usecase.HoldRepository.
type HoldRepository struct {
	queries *generated.Queries
}

// NewHoldRepository creates a new HoldRepository.
func NewHoldRepository(db generated.DBTX) *HoldRepository {
	return &HoldRepository{queries: generated.New(db)}
}

// Create creates a new hold.
func (r *HoldRepository) Create(ctx context.Context, tx usecase.Transaction, hold *domain.Hold) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateHold(ctx, generated.CreateHoldParams{
		WalletID:  hold.WalletID,
		HoldID:    hold.ID,
		TenantID:  hold.TenantID,
		Amount:    hold.Amount,
		Status:    string(hold.Status),
		CreatedAt: timeToPgTimestamptz(hold.CreatedAt),
	})
	if _, dup := uniqueViolation(err); dup {
		return fmt.Errorf("%w: %s", domain.ErrHoldExists, hold.ID)
	}

	return err
}

func (r *HoldRepository) GetTx(ctx context.Context, tx usecase.Transaction, walletID, holdID string) (*domain.Hold, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetHold(ctx, generated.GetHoldParams{WalletID: walletID, HoldID: holdID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrHoldNotFound, holdID)
		}
		return nil, err
	}

	return rowToHold(row), nil
}

// Close persists the hold's terminal status. Only OPEN rows are updated.
func (r *HoldRepository) Close(ctx context.Context, tx usecase.Transaction, hold *domain.Hold) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	n, err := queries.CloseHold(ctx, generated.CloseHoldParams{
		WalletID: hold.WalletID,
		HoldID:   hold.ID,
		Status:   string(hold.Status),
		EntryID:  textOrNull(hold.EntryID),
		ClosedAt: optionalTimestamptz(hold.ClosedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrHoldClosed, hold.ID)
	}

	return nil
}

// ListByWallet lists holds, newest first. An empty status matches all.
func (r *HoldRepository) ListByWallet(ctx context.Context, walletID string, status domain.HoldStatus, limit, offset int) ([]*domain.Hold, error) {
	pageLimit, pageOffset := pageArgs(limit, offset)
	rows, err := r.queries.ListHoldsByWallet(ctx, generated.ListHoldsByWalletParams{
		WalletID:   walletID,
		Status:     string(status),
		PageLimit:  pageLimit,
		PageOffset: pageOffset,
	})
	if err != nil {
		return nil, err
	}

	holds := make([]*domain.Hold, 0, len(rows))
	for _, row := range rows {
		holds = append(holds, rowToHold(row))
	}

	return holds, nil
}

func (r *HoldRepository) CountByWallet(ctx context.Context, walletID string, status domain.HoldStatus) (int64, error) {
	return r.queries.CountHoldsByWallet(ctx, generated.CountHoldsByWalletParams{
		WalletID: walletID,
		Status:   string(status),
	})
}

// SumOpen totals the amounts of a wallet's open holds inside tx.
func (r *HoldRepository) SumOpen(ctx context.Context, tx usecase.Transaction, walletID string) (int64, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return 0, err
	}
	return queries.SumOpenHolds(ctx, walletID)
}

func rowToHold(row generated.Hold) *domain.Hold {
	return &domain.Hold{
		ID:        row.HoldID,
		WalletID:  row.WalletID,
		TenantID:  row.TenantID,
		Amount:    row.Amount,
		Status:    domain.HoldStatus(row.Status),
		EntryID:   row.EntryID.String,
		CreatedAt: row.CreatedAt.Time,
		ClosedAt:  timestamptzPtr(row.ClosedAt),
	}
}
