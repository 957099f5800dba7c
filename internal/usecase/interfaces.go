package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// WalletFilter narrows ListWallets. Empty fields are ignored.
type WalletFilter struct {
	Type    domain.WalletType
	Status  domain.WalletStatus
	OwnerID string
}

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	CreateTx(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	// UpdateState persists balance, pending balance, status and version
	// only if the stored version still equals expectedVersion. It returns
	// domain.ErrVersionConflict otherwise.
	UpdateState(ctx context.Context, tx Transaction, wallet *domain.Wallet, expectedVersion int64) error
	List(ctx context.Context, tenantID string, filter WalletFilter, limit, offset int) ([]*domain.Wallet, error)
	Count(ctx context.Context, tenantID string, filter WalletFilter) (int64, error)
	SumBalances(ctx context.Context, tenantID string) (decimal.Decimal, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	GetByTransferTx(ctx context.Context, tx Transaction, transferID string) ([]*domain.Entry, error)
	ListByWallet(ctx context.Context, walletID string, entryType domain.EntryType, limit, offset int) ([]*domain.Entry, error)
	CountByWallet(ctx context.Context, walletID string, entryType domain.EntryType) (int64, error)
	// ListForReplay returns entries in creation order after the given cursor.
	ListForReplay(ctx context.Context, tx Transaction, walletID string, cursor int64, limit int) ([]*domain.Entry, int64, error)
}

// HoldRepository defines data access for holds.
type HoldRepository interface {
	Create(ctx context.Context, tx Transaction, hold *domain.Hold) error
	GetTx(ctx context.Context, tx Transaction, walletID, holdID string) (*domain.Hold, error)
	// Close marks an OPEN hold closed. It returns domain.ErrHoldClosed if the
	// hold is no longer OPEN.
	Close(ctx context.Context, tx Transaction, hold *domain.Hold) error
	ListByWallet(ctx context.Context, walletID string, status domain.HoldStatus, limit, offset int) ([]*domain.Hold, error)
	CountByWallet(ctx context.Context, walletID string, status domain.HoldStatus) (int64, error)
	SumOpen(ctx context.Context, tx Transaction, walletID string) (int64, error)
}

// IdempotencyRepository stores durable (wallet, key) -> entry records.
type IdempotencyRepository interface {
	Get(ctx context.Context, tx Transaction, walletID, key string) (*domain.IdempotencyRecord, error)
	Create(ctx context.Context, tx Transaction, record *domain.IdempotencyRecord) error
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	// BeginSnapshot starts a read-only transaction with a stable snapshot.
	BeginSnapshot(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// WalletCache invalidates cached wallet reads after a commit.
type WalletCache interface {
	Invalidate(ctx context.Context, walletIDs ...string)
}
