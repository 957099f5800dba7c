package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
)

// MutationHandler applies credits, debits and hold operations to a wallet.
type MutationHandler struct {
	engine CommandExecutor
}

func NewMutationHandler(engine CommandExecutor) *MutationHandler {
	return &MutationHandler{engine: engine}
}

// Mutate dispatches on the request's action. The idempotency key may come
// from the body or the Idempotency-Key header; the body wins.
func (h *MutationHandler) Mutate(w http.ResponseWriter, r *http.Request) {
	var req dto.MutationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.IdempotencyKey = middleware.ResolveIdempotencyKey(req.IdempotencyKey, r)

	cmd, err := req.ToCommand(tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.engine.Execute(r.Context(), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, createdOrReplayed(res.IsDuplicate), dto.MutationFromResult(res))
}
