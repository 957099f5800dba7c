package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultPageSize and MaxPageSize bound list operations.
	DefaultPageSize = 50
	MaxPageSize     = 500

	// replayBatchSize is how many entries reconciliation reads per round trip.
	replayBatchSize = 1000
)

// normalizePage clamps limit and offset into the supported range.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
