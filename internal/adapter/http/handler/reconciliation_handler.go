package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/usecase"
)

// TenantReconciler recalculates every wallet of a tenant.
type TenantReconciler interface {
	ReconcileTenant(ctx context.Context, tenantID string) (*usecase.TenantReconciliationReport, error)
}

// ReconciliationHandler exposes wallet and tenant reconciliation.
type ReconciliationHandler struct {
	engine     CommandExecutor
	reconciler TenantReconciler
}

func NewReconciliationHandler(engine CommandExecutor, reconciler TenantReconciler) *ReconciliationHandler {
	return &ReconciliationHandler{engine: engine, reconciler: reconciler}
}

// Wallet recalculates one wallet.
func (h *ReconciliationHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Execute(r.Context(), usecase.RecalculateCommand{
		TenantID: tenantID(r),
		WalletID: chi.URLParam(r, "id"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromReport(res.Report))
}

// Tenant recalculates every wallet of the requesting tenant.
func (h *ReconciliationHandler) Tenant(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.ReconcileTenant(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TenantReconciliationFromReport(report))
}
