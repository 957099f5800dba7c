package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// Stores bundles the repositories the engine runs on.
type Stores struct {
	TxManager   TransactionManager
	Wallets     WalletRepository
	Entries     EntryRepository
	Holds       HoldRepository
	Idempotency IdempotencyRepository
	Outbox      OutboxRepository
	Audit       AuditRepository
}

// WalletReader reads a wallet outside a transaction. A cache may sit in front of it.
type WalletReader interface {
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
}

// Dependencies wires a use case. Reader, Cache, Outbox, Audit and Metrics are optional.
type Dependencies struct {
	Stores
	Reader  WalletReader
	Retrier Retrier
	IDGen   IDGenerator
	Cache   WalletCache
	Metrics *metrics.Metrics
}

type core struct {
	stores  Stores
	reader  WalletReader
	runner  *txRunner
	guard   *TenantGuard
	idem    idempotencyGuard
	events  eventRecorder
	idGen   IDGenerator
	cache   WalletCache
	metrics *metrics.Metrics
}

func newCore(d Dependencies) core {
	reader := d.Reader
	if reader == nil {
		reader = d.Wallets
	}
	return core{
		stores:  d.Stores,
		reader:  reader,
		runner:  &txRunner{txManager: d.TxManager, retrier: d.Retrier, metrics: d.Metrics},
		guard:   NewTenantGuard(reader, d.Audit, d.IDGen, d.Metrics),
		idem:    idempotencyGuard{records: d.Idempotency, entries: d.Entries},
		events:  eventRecorder{outbox: d.Outbox, idGen: d.IDGen},
		idGen:   d.IDGen,
		cache:   d.Cache,
		metrics: d.Metrics,
	}
}

// walletInTx reads the wallet inside tx and checks its tenant. The version
// read here is what UpdateState later compares against.
func (c *core) walletInTx(ctx context.Context, tx Transaction, op, tenantID, walletID string) (*domain.Wallet, error) {
	wallet, err := c.stores.Wallets.GetByIDTx(ctx, tx, walletID)
	if err != nil {
		return nil, err
	}
	if err := c.guard.Check(ctx, op, tenantID, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (c *core) invalidate(ctx context.Context, walletIDs ...string) {
	if c.cache != nil {
		c.cache.Invalidate(ctx, walletIDs...)
	}
}

// txRunner executes fn in a transaction and re-runs the whole attempt on
// retryable failures such as a wallet version conflict.
type txRunner struct {
	txManager TransactionManager
	retrier   Retrier
	metrics   *metrics.Metrics
}

func (r *txRunner) run(ctx context.Context, op string, fn func(ctx context.Context, tx Transaction) error) error {
	attempts := 0
	attempt := func() error {
		attempts++
		err := r.once(ctx, fn)
		if errors.Is(err, domain.ErrVersionConflict) {
			if r.metrics != nil {
				r.metrics.VersionConflicts.WithLabelValues(op).Inc()
			}
			zerolog.Ctx(ctx).Warn().
				Str("operation", op).
				Int("attempt", attempts).
				Msg("wallet version conflict")
		}
		return err
	}

	var err error
	if r.retrier == nil {
		err = attempt()
	} else {
		err = r.retrier.Retry(ctx, attempt)
	}

	if errors.Is(err, domain.ErrVersionConflict) {
		return fmt.Errorf("%w: %s gave up after %d attempts", domain.ErrConcurrentUpdate, op, attempts)
	}
	return err
}

func (r *txRunner) once(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := r.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// idempotencyGuard resolves (wallet, key) to the entry a prior mutation wrote.
type idempotencyGuard struct {
	records IdempotencyRepository
	entries EntryRepository
}

// lookup returns the original entry, or nil when the key is unused.
func (g idempotencyGuard) lookup(ctx context.Context, tx Transaction, walletID, key string) (*domain.Entry, error) {
	if key == "" {
		return nil, nil
	}
	rec, err := g.records.Get(ctx, tx, walletID, key)
	if errors.Is(err, domain.ErrIdempotencyRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g.entries.GetByIDTx(ctx, tx, rec.ResultEntryID)
}

func (g idempotencyGuard) remember(ctx context.Context, tx Transaction, walletID, key, entryID string, now time.Time) error {
	if key == "" {
		return nil
	}
	return g.records.Create(ctx, tx, &domain.IdempotencyRecord{
		Key:           key,
		WalletID:      walletID,
		ResultEntryID: entryID,
		CreatedAt:     now,
	})
}

// eventRecorder writes outbox rows inside the caller's transaction.
type eventRecorder struct {
	outbox OutboxRepository
	idGen  IDGenerator
}

func (r eventRecorder) record(ctx context.Context, tx Transaction, tenantID, aggregateType, aggregateID, eventType string, payload any, now time.Time) error {
	if r.outbox == nil {
		return nil
	}
	return r.outbox.Create(ctx, tx, &domain.OutboxEvent{
		ID:            r.idGen.Generate(),
		TenantID:      tenantID,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       domain.MarshalState(payload),
		CreatedAt:     now,
	})
}
