package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// WalletService defines the read side needed by WalletHandler.
type WalletService interface {
	GetWallet(ctx context.Context, tenantID, walletID string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, input usecase.ListWalletsInput) (*usecase.WalletPage, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	engine  CommandExecutor
	wallets WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(engine CommandExecutor, wallets WalletService) *WalletHandler {
	return &WalletHandler{engine: engine, wallets: wallets}
}

// Create creates a new wallet.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWalletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.engine.Execute(r.Context(), req.ToCommand(tenantID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.WalletFromDomain(res.Wallet))
}

// Get retrieves a wallet by ID.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.GetWallet(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// List lists the tenant's wallets.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.wallets.ListWallets(r.Context(), usecase.ListWalletsInput{
		TenantID: tenantID(r),
		Filter: usecase.WalletFilter{
			Type:    domain.WalletType(strings.ToUpper(q.Get("type"))),
			Status:  domain.WalletStatus(strings.ToUpper(q.Get("status"))),
			OwnerID: q.Get("owner_id"),
		},
		Limit:  parseIntQuery(r, "limit", usecase.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListWalletsResponse{
		Wallets:    dto.WalletsFromDomain(page.Wallets),
		Pagination: pagination(page.Total, page.Limit, page.Offset),
	})
}

// Update changes the wallet status and/or recalculates it.
func (h *WalletHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWalletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Status == nil && !req.Recalculate {
		writeError(w, r, domain.ErrNothingToUpdate)
		return
	}

	tenant, walletID := tenantID(r), chi.URLParam(r, "id")
	var resp dto.UpdateWalletResponse

	if req.Status != nil {
		res, err := h.engine.Execute(r.Context(), usecase.UpdateStatusCommand{
			TenantID: tenant,
			WalletID: walletID,
			Status:   domain.WalletStatus(*req.Status),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Wallet = dto.WalletFromDomain(res.Wallet)
	}

	if req.Recalculate {
		res, err := h.engine.Execute(r.Context(), usecase.RecalculateCommand{TenantID: tenant, WalletID: walletID})
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Reconciliation = dto.ReconciliationFromReport(res.Report)
	}

	if resp.Wallet == nil {
		wallet, err := h.wallets.GetWallet(r.Context(), tenant, walletID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Wallet = dto.WalletFromDomain(wallet)
	}

	writeJSON(w, http.StatusOK, resp)
}
