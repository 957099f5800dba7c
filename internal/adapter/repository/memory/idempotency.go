package memory

import (
	"context"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// IdempotencyRepository implements usecase.IdempotencyRepository.
type IdempotencyRepository struct {
	s *Store
}

func (r *IdempotencyRepository) Get(_ context.Context, tx usecase.Transaction, walletID, key string) (*domain.IdempotencyRecord, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.st.idem[idemKey{walletID, key}]
	if !ok {
		return nil, domain.ErrIdempotencyRecordNotFound
	}
	return &rec, nil
}

// Create fails with domain.ErrVersionConflict if the key is taken, so the
// caller retries and observes the existing record.
func (r *IdempotencyRepository) Create(_ context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	if _, err := asTx(tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := idemKey{record.WalletID, record.Key}
	if _, ok := r.s.st.idem[k]; ok {
		return domain.ErrVersionConflict
	}
	r.s.st.idem[k] = *record
	return nil
}

// DeleteBefore waits for running transactions so a rollback cannot revive rows.
func (r *IdempotencyRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for k, rec := range r.s.st.idem {
		if rec.CreatedAt.Before(before) {
			delete(r.s.st.idem, k)
			n++
		}
	}
	return n, nil
}
