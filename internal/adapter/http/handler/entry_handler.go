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

type EntryService interface {
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) (*usecase.EntryPage, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entries EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entries EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// List lists a wallet's entries, newest first.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.entries.ListEntries(r.Context(), usecase.ListEntriesInput{
		TenantID:  tenantID(r),
		WalletID:  chi.URLParam(r, "id"),
		EntryType: domain.EntryType(strings.ToUpper(r.URL.Query().Get("entry_type"))),
		Limit:     parseIntQuery(r, "limit", usecase.DefaultPageSize),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries:    dto.EntriesFromDomain(page.Entries),
		Pagination: pagination(page.Total, page.Limit, page.Offset),
	})
}
