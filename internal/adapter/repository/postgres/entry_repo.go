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

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create appends an entry. A second entry with the same (wallet, key) means a
// concurrent request won; it is reported as a version conflict so the caller
// retries and replays the winner.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:             entry.ID,
		WalletID:       entry.WalletID,
		TenantID:       entry.TenantID,
		EntryType:      string(entry.EntryType),
		Amount:         entry.Amount,
		IdempotencyKey: textOrNull(entry.IdempotencyKey),
		ReferenceType:  entry.ReferenceType,
		ReferenceID:    entry.ReferenceID,
		Description:    entry.Description,
		TransferID:     textOrNull(entry.TransferID),
		BalanceBefore:  entry.BalanceBefore,
		BalanceAfter:   entry.BalanceAfter,
		WalletVersion:  entry.WalletVersion,
		CreatedAt:      timeToPgTimestamptz(entry.CreatedAt),
	})
	if _, dup := uniqueViolation(err); dup {
		return domain.ErrVersionConflict
	}

	return err
}

func (r *EntryRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
		}
		return nil, err
	}

	return rowToEntry(row), nil
}

// GetByTransferTx returns both legs of a transfer, debit first.
func (r *EntryRepository) GetByTransferTx(ctx context.Context, tx usecase.Transaction, transferID string) ([]*domain.Entry, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetEntriesByTransfer(ctx, textOrNull(transferID))
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListByWallet returns a page of entries, newest first.
func (r *EntryRepository) ListByWallet(ctx context.Context, walletID string, entryType domain.EntryType, limit, offset int) ([]*domain.Entry, error) {
	pageLimit, pageOffset := pageArgs(limit, offset)
	rows, err := r.queries.ListEntriesByWallet(ctx, generated.ListEntriesByWalletParams{
		WalletID:   walletID,
		EntryType:  string(entryType),
		PageLimit:  pageLimit,
		PageOffset: pageOffset,
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

func (r *EntryRepository) CountByWallet(ctx context.Context, walletID string, entryType domain.EntryType) (int64, error) {
	return r.queries.CountEntriesByWallet(ctx, generated.CountEntriesByWalletParams{
		WalletID:  walletID,
		EntryType: string(entryType),
	})
}

// ListForReplay pages through a wallet's entries in sequence order. The
// returned cursor is the sequence number of the last entry.
func (r *EntryRepository) ListForReplay(ctx context.Context, tx usecase.Transaction, walletID string, cursor int64, limit int) ([]*domain.Entry, int64, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := queries.ListEntriesForReplay(ctx, generated.ListEntriesForReplayParams{
		WalletID: walletID,
		Seq:      cursor,
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, 0, err
	}

	next := cursor
	if len(rows) > 0 {
		next = rows[len(rows)-1].Seq
	}

	return rowsToEntries(rows), next, nil
}

func rowsToEntries(rows []generated.LedgerEntry) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries
}

func rowToEntry(row generated.LedgerEntry) *domain.Entry {
	return &domain.Entry{
		ID:             row.ID,
		WalletID:       row.WalletID,
		TenantID:       row.TenantID,
		EntryType:      domain.EntryType(row.EntryType),
		Amount:         row.Amount,
		IdempotencyKey: row.IdempotencyKey.String,
		ReferenceType:  row.ReferenceType,
		ReferenceID:    row.ReferenceID,
		Description:    row.Description,
		TransferID:     row.TransferID.String,
		BalanceBefore:  row.BalanceBefore,
		BalanceAfter:   row.BalanceAfter,
		WalletVersion:  row.WalletVersion,
		CreatedAt:      row.CreatedAt.Time,
	}
}
