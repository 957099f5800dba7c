package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// TenantGuard checks that every wallet an operation touches belongs to the
// caller's declared tenant. Violations are logged, counted and audited.
type TenantGuard struct {
	reader    WalletReader
	auditRepo AuditRepository
	idGen     IDGenerator
	metrics   *metrics.Metrics
}

func NewTenantGuard(reader WalletReader, auditRepo AuditRepository, idGen IDGenerator, m *metrics.Metrics) *TenantGuard {
	return &TenantGuard{reader: reader, auditRepo: auditRepo, idGen: idGen, metrics: m}
}

// Wallet loads a wallet and checks its tenant. Unknown wallets yield
// domain.ErrWalletNotFound; foreign ones domain.ErrWalletOwnership.
func (g *TenantGuard) Wallet(ctx context.Context, op, tenantID, walletID string) (*domain.Wallet, error) {
	if err := domain.ValidateScope(tenantID, walletID); err != nil {
		return nil, err
	}
	wallet, err := g.reader.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if err := g.Check(ctx, op, tenantID, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// Check fails closed when wallet belongs to a tenant other than tenantID.
func (g *TenantGuard) Check(ctx context.Context, op, tenantID string, wallet *domain.Wallet) error {
	if wallet.TenantID == tenantID {
		return nil
	}
	g.reject(ctx, op, tenantID, wallet.ID)
	return fmt.Errorf("%w: wallet %s", domain.ErrWalletOwnership, wallet.ID)
}

// CheckTransfer requires both legs and the caller to share one tenant.
func (g *TenantGuard) CheckTransfer(ctx context.Context, tenantID string, from, to *domain.Wallet) error {
	if from.TenantID == tenantID && to.TenantID == tenantID {
		return nil
	}
	for _, w := range []*domain.Wallet{from, to} {
		if w.TenantID != tenantID {
			g.reject(ctx, "transfer", tenantID, w.ID)
		}
	}
	return domain.ErrCrossTenantTransfer
}

func (g *TenantGuard) reject(ctx context.Context, op, tenantID, walletID string) {
	zerolog.Ctx(ctx).Warn().
		Str("operation", op).
		Str("tenant_id", tenantID).
		Str("wallet_id", walletID).
		Msg("wallet does not belong to tenant")

	if g.metrics != nil {
		g.metrics.TenantViolations.WithLabelValues(op).Inc()
	}

	if g.auditRepo == nil {
		return
	}
	log := &domain.AuditLog{
		ID:           g.idGen.Generate(),
		TenantID:     tenantID,
		OperatorID:   domain.OperatorID(ctx),
		Action:       domain.AuditActionTenantViolation,
		ResourceType: domain.AggregateTypeWallet,
		ResourceID:   walletID,
		AfterState:   domain.JSON{"operation": op},
		Status:       domain.AuditStatusFailure,
		ErrorMessage: domain.ErrWalletOwnership.Message,
		CreatedAt:    time.Now().UTC(),
	}
	// The request is already failing; an audit write error only gets logged.
	if err := g.auditRepo.Create(context.WithoutCancel(ctx), log); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to write tenant violation audit log")
	}
}
