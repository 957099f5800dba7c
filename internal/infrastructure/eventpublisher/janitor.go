package eventpublisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/usecase"
)

// IdempotencyJanitor periodically deletes idempotency records older than
// the retention window.
type IdempotencyJanitor struct {
	records   usecase.IdempotencyRepository
	logger    zerolog.Logger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewIdempotencyJanitor(records usecase.IdempotencyRepository, logger zerolog.Logger, retention, interval time.Duration) *IdempotencyJanitor {
	if interval == 0 {
		interval = time.Hour
	}
	return &IdempotencyJanitor{
		records:   records,
		logger:    logger.With().Str("component", "idempotency_janitor").Logger(),
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Start runs until ctx is cancelled. A zero retention disables the janitor.
func (j *IdempotencyJanitor) Start(ctx context.Context) error {
	if j.retention <= 0 {
		j.logger.Info().Msg("idempotency janitor disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *IdempotencyJanitor) sweep(ctx context.Context) {
	n, err := j.records.DeleteBefore(ctx, j.now().Add(-j.retention))
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to delete expired idempotency records")
		return
	}
	if n > 0 {
		j.logger.Info().Int64("deleted", n).Msg("deleted expired idempotency records")
	}
}
