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

type HoldService interface {
	ListHolds(ctx context.Context, input usecase.ListHoldsInput) (*usecase.HoldPage, error)
}

type HoldHandler struct {
	holds HoldService
}

func NewHoldHandler(holds HoldService) *HoldHandler {
	return &HoldHandler{holds: holds}
}

// List lists a wallet's holds, optionally filtered by status.
func (h *HoldHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.holds.ListHolds(r.Context(), usecase.ListHoldsInput{
		TenantID: tenantID(r),
		WalletID: chi.URLParam(r, "id"),
		Status:   domain.HoldStatus(strings.ToUpper(r.URL.Query().Get("status"))),
		Limit:    parseIntQuery(r, "limit", usecase.DefaultPageSize),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListHoldsResponse{
		Holds:      dto.HoldsFromDomain(page.Holds),
		Pagination: pagination(page.Total, page.Limit, page.Offset),
	})
}
