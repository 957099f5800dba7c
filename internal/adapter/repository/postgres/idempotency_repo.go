package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// IdempotencyRepository implements usecase.IdempotencyRepository.
type IdempotencyRepository struct {
	queries *generated.Queries
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(db generated.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{queries: generated.New(db)}
}

func (r *IdempotencyRepository) Get(ctx context.Context, tx usecase.Transaction, walletID, key string) (*domain.IdempotencyRecord, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetIdempotencyRecord(ctx, generated.GetIdempotencyRecordParams{
		WalletID:       walletID,
		IdempotencyKey: key,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIdempotencyRecordNotFound
		}
		return nil, err
	}

	return &domain.IdempotencyRecord{
		Key:           row.IdempotencyKey,
		WalletID:      row.WalletID,
		ResultEntryID: row.ResultEntryID,
		CreatedAt:     row.CreatedAt.Time,
	}, nil
}

// Create stores the record. Losing the insert race to a concurrent request
// is reported as a version conflict.
func (r *IdempotencyRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateIdempotencyRecord(ctx, generated.CreateIdempotencyRecordParams{
		WalletID:       record.WalletID,
		IdempotencyKey: record.Key,
		ResultEntryID:  record.ResultEntryID,
		CreatedAt:      timeToPgTimestamptz(record.CreatedAt),
	})
	if _, dup := uniqueViolation(err); dup {
		return domain.ErrVersionConflict
	}

	return err
}

// DeleteBefore removes records created before the cutoff.
func (r *IdempotencyRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.queries.DeleteIdempotencyRecordsBefore(ctx, timeToPgTimestamptz(before))
}
