package handler

import (
	"net/http"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
)

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	engine CommandExecutor
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(engine CommandExecutor) *TransferHandler {
	return &TransferHandler{engine: engine}
}

// Create moves funds between two wallets of the tenant.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.IdempotencyKey = middleware.ResolveIdempotencyKey(req.IdempotencyKey, r)

	cmd, err := req.ToCommand(tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.engine.Execute(r.Context(), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, createdOrReplayed(res.IsDuplicate), dto.TransferFromResult(res.Transfer))
}
