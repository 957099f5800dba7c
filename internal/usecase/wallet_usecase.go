package usecase

import (
	"context"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// WalletUseCase handles wallet lifecycle: creation, lookup and status.
type WalletUseCase struct {
	core
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(d Dependencies) *WalletUseCase {
	return &WalletUseCase{core: newCore(d)}
}

// CreateWalletInput represents input for creating a wallet.
type CreateWalletInput struct {
	TenantID string
	Type     domain.WalletType
	OwnerID  string
}

// CreateWallet creates an empty ACTIVE wallet. A second wallet for the same
// (tenant, type, owner), or a second PLATFORM wallet, fails with domain.ErrWalletExists.
func (uc *WalletUseCase) CreateWallet(ctx context.Context, in CreateWalletInput) (*domain.Wallet, error) {
	wallet, err := domain.NewWallet(uc.idGen.Generate(), in.TenantID, in.Type, in.OwnerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = uc.runner.run(ctx, "create_wallet", func(ctx context.Context, tx Transaction) error {
		if err := uc.stores.Wallets.CreateTx(ctx, tx, wallet); err != nil {
			return err
		}
		return uc.events.record(ctx, tx, wallet.TenantID, domain.AggregateTypeWallet, wallet.ID, domain.EventTypeWalletCreated, domain.WalletCreatedEvent{
			WalletID: wallet.ID,
			TenantID: wallet.TenantID,
			Type:     string(wallet.Type),
			OwnerID:  wallet.OwnerID,
		}, wallet.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.WalletsCreated.Inc()
	}

	return wallet, nil
}

// GetWallet returns a wallet of tenantID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, tenantID, walletID string) (*domain.Wallet, error) {
	return uc.guard.Wallet(ctx, "get_wallet", tenantID, walletID)
}

// ListWalletsInput represents input for listing wallets.
type ListWalletsInput struct {
	TenantID string
	Filter   WalletFilter
	Limit    int
	Offset   int
}

// WalletPage is one page of wallets plus the unpaged total.
type WalletPage struct {
	Wallets []*domain.Wallet
	Total   int64
	Limit   int
	Offset  int
}

// ListWallets lists wallets of a single tenant.
func (uc *WalletUseCase) ListWallets(ctx context.Context, in ListWalletsInput) (*WalletPage, error) {
	if in.TenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	if in.Filter.Type != "" && !in.Filter.Type.Valid() {
		return nil, domain.ErrInvalidWalletType
	}
	if in.Filter.Status != "" && !in.Filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	limit, offset := normalizePage(in.Limit, in.Offset)
	wallets, err := uc.stores.Wallets.List(ctx, in.TenantID, in.Filter, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.stores.Wallets.Count(ctx, in.TenantID, in.Filter)
	if err != nil {
		return nil, err
	}

	return &WalletPage{Wallets: wallets, Total: total, Limit: limit, Offset: offset}, nil
}

// UpdateStatusInput represents an administrative status change.
type UpdateStatusInput struct {
	TenantID string
	WalletID string
	Status   domain.WalletStatus
}

func (in UpdateStatusInput) Validate() error {
	if err := domain.ValidateScope(in.TenantID, in.WalletID); err != nil {
		return err
	}
	if !in.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	return nil
}

// UpdateStatus moves a wallet between ACTIVE and FROZEN, or to CLOSED.
// Setting the current status again is a no-op.
func (uc *WalletUseCase) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*domain.Wallet, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		wallet  *domain.Wallet
		changed bool
	)
	err := uc.runner.run(ctx, "update_status", func(ctx context.Context, tx Transaction) error {
		var err error
		wallet, err = uc.walletInTx(ctx, tx, "update_status", in.TenantID, in.WalletID)
		if err != nil {
			return err
		}

		previous := wallet.Status
		expected := wallet.Version
		now := time.Now().UTC()
		changed, err = wallet.TransitionTo(in.Status, now)
		if err != nil || !changed {
			return err
		}

		if err := uc.stores.Wallets.UpdateState(ctx, tx, wallet, expected); err != nil {
			return err
		}

		if uc.stores.Audit != nil {
			if err := uc.stores.Audit.CreateTx(ctx, tx, &domain.AuditLog{
				ID:           uc.idGen.Generate(),
				TenantID:     in.TenantID,
				OperatorID:   domain.OperatorID(ctx),
				Action:       domain.AuditActionWalletStatusChange,
				ResourceType: domain.AggregateTypeWallet,
				ResourceID:   wallet.ID,
				BeforeState:  domain.JSON{"status": string(previous)},
				AfterState:   domain.JSON{"status": string(wallet.Status)},
				Status:       domain.AuditStatusSuccess,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
		}

		return uc.events.record(ctx, tx, wallet.TenantID, domain.AggregateTypeWallet, wallet.ID, domain.EventTypeWalletStatusChanged, domain.WalletStatusChangedEvent{
			WalletID: wallet.ID,
			From:     string(previous),
			To:       string(wallet.Status),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.invalidate(ctx, wallet.ID)
		if uc.metrics != nil {
			uc.metrics.WalletStatusChanges.WithLabelValues(string(wallet.Status)).Inc()
		}
	}

	return wallet, nil
}
