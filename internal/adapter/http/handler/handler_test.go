package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/adapter/repository/memory"
	"github.com/iho/walletledger/internal/adapter/repository/postgres"
	"github.com/iho/walletledger/internal/usecase"
)

type testAPI struct {
	t      *testing.T
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.New()
	engine := usecase.NewEngine(usecase.Dependencies{
		Stores: store.Stores(),
		Retrier: postgres.NewRetrierWithConfig(postgres.RetrierConfig{
			MaxRetries:      3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  time.Second,
		}),
		IDGen: memory.NewSequenceGenerator("id"),
	})

	wallets := NewWalletHandler(engine, engine.Wallets())
	mutations := NewMutationHandler(engine)
	transfers := NewTransferHandler(engine)
	entries := NewEntryHandler(engine.Entries())
	holds := NewHoldHandler(engine.Holds())
	recon := NewReconciliationHandler(engine, engine.Reconciliation())

	r := chi.NewRouter()
	r.Use(middleware.RequireTenant)
	r.Post("/wallets", wallets.Create)
	r.Get("/wallets", wallets.List)
	r.Get("/wallets/{id}", wallets.Get)
	r.Patch("/wallets/{id}", wallets.Update)
	r.Post("/wallets/{id}/mutations", mutations.Mutate)
	r.Get("/wallets/{id}/entries", entries.List)
	r.Get("/wallets/{id}/holds", holds.List)
	r.Get("/wallets/{id}/reconciliation", recon.Wallet)
	r.Post("/transfers", transfers.Create)
	r.Get("/reconciliation", recon.Tenant)

	return &testAPI{t: t, router: r}
}

func (a *testAPI) do(method, path, tenant string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeader, tenant)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func (a *testAPI) createWallet(tenant, walletType, owner string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/wallets", tenant, map[string]string{"type": walletType, "owner_id": owner})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create wallet: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	return decode[dto.WalletResponse](a.t, rec).ID
}

func TestWalletHandler_CreateGetList(t *testing.T) {
	api := newTestAPI(t)
	id := api.createWallet("t1", "CUSTOMER", "cust-1")
	api.createWallet("t1", "PLATFORM", "")

	rec := api.do(http.MethodGet, "/wallets/"+id, "t1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	w := decode[dto.WalletResponse](t, rec)
	if w.Status != "ACTIVE" || w.OwnerID != "cust-1" || w.Balance != 0 {
		t.Fatalf("unexpected wallet %+v", w)
	}

	rec = api.do(http.MethodGet, "/wallets?type=customer&limit=10", "t1", nil)
	list := decode[dto.ListWalletsResponse](t, rec)
	if len(list.Wallets) != 1 || list.Pagination.Total != 1 || list.Pagination.Limit != 10 {
		t.Fatalf("unexpected list %+v", list)
	}

	if rec := api.do(http.MethodGet, "/wallets/"+id, "t2", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected cross-tenant get to be 403, got %d", rec.Code)
	}
}

func TestWalletHandler_CreateValidation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"bad json", "{bad json", http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
		{"unknown type", map[string]string{"type": "BANK", "owner_id": "x"}, http.StatusBadRequest},
		{"owner on platform", map[string]string{"type": "PLATFORM", "owner_id": "x"}, http.StatusBadRequest},
		{"missing owner", map[string]string{"type": "VENDOR"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/wallets", "t1", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d %s", tt.want, rec.Code, rec.Body.String())
			}
			if resp := decode[dto.ErrorResponse](t, rec); resp.Code != "VALIDATION_ERROR" {
				t.Fatalf("expected VALIDATION_ERROR, got %+v", resp)
			}
		})
	}

	api.createWallet("t1", "PLATFORM", "")
	if rec := api.do(http.MethodPost, "/wallets", "t1", map[string]string{"type": "PLATFORM"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected duplicate platform wallet to be rejected, got %d", rec.Code)
	}
}

func TestMutationHandler_CreditDebitAndReplay(t *testing.T) {
	api := newTestAPI(t)
	id := api.createWallet("t1", "VENDOR", "v-1")
	path := "/wallets/" + id + "/mutations"

	credit := map[string]any{"action": "credit", "amount": 100, "entry_type": "CREDIT_SALE_PROCEEDS", "idempotency_key": "c1"}
	rec := api.do(http.MethodPost, path, "t1", credit)
	if rec.Code != http.StatusCreated {
		t.Fatalf("credit: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	first := decode[dto.MutationResponse](t, rec)
	if first.Wallet.Balance != 100 || first.Entry == nil || first.Entry.BalanceAfter != 100 || first.IsDuplicate {
		t.Fatalf("unexpected credit response %+v", first)
	}

	rec = api.do(http.MethodPost, path, "t1", credit)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d", rec.Code)
	}
	replay := decode[dto.MutationResponse](t, rec)
	if !replay.IsDuplicate || replay.Entry.ID != first.Entry.ID || replay.Wallet.Balance != 100 {
		t.Fatalf("unexpected replay response %+v", replay)
	}

	// Key from header.
	debit := map[string]any{"action": "debit", "amount": "30", "entry_type": "DEBIT_PAYOUT"}
	rec = api.do(http.MethodPost, path, "t1", debit, middleware.IdempotencyKeyHeader, "d1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("debit: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[dto.MutationResponse](t, rec); got.Entry.IdempotencyKey != "d1" || got.Wallet.Balance != 70 {
		t.Fatalf("unexpected debit response %+v", got)
	}

	rec = api.do(http.MethodPost, path, "t1", map[string]any{"action": "debit", "amount": 500, "entry_type": "DEBIT_PAYOUT"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraft: expected 422, got %d", rec.Code)
	}
	if resp := decode[dto.ErrorResponse](t, rec); resp.Code != "INSUFFICIENT_BALANCE" {
		t.Fatalf("expected INSUFFICIENT_BALANCE, got %+v", resp)
	}

	rec = api.do(http.MethodPost, path, "t1", map[string]any{"action": "credit", "amount": 1.5, "entry_type": "CREDIT_TOPUP"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("fractional amount: expected 400, got %d", rec.Code)
	}

	rec = api.do(http.MethodPost, path, "t1", map[string]any{"action": "refund", "amount": 1})
	if resp := decode[dto.ErrorResponse](t, rec); rec.Code != http.StatusBadRequest || resp.Details["action"] == "" {
		t.Fatalf("unknown action: expected 400 with details, got %d %+v", rec.Code, resp)
	}
}

func TestMutationHandler_HoldLifecycle(t *testing.T) {
	api := newTestAPI(t)
	id := api.createWallet("t1", "CUSTOMER", "c-1")
	path := "/wallets/" + id + "/mutations"

	api.do(http.MethodPost, path, "t1", map[string]any{"action": "credit", "amount": 200, "entry_type": "CREDIT_TOPUP"})

	rec := api.do(http.MethodPost, path, "t1", map[string]any{"action": "hold", "amount": 80, "hold_id": "h1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("hold: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	held := decode[dto.MutationResponse](t, rec)
	if held.Wallet.PendingBalance != 80 || held.Wallet.AvailableBalance != 120 || held.Hold.Status != "OPEN" {
		t.Fatalf("unexpected hold response %+v", held)
	}

	rec = api.do(http.MethodPost, path, "t1", map[string]any{"action": "capture", "hold_id": "h1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("capture: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	captured := decode[dto.MutationResponse](t, rec)
	if captured.Wallet.Balance != 120 || captured.Wallet.PendingBalance != 0 || captured.Entry.EntryType != "DEBIT_HOLD_CAPTURE" {
		t.Fatalf("unexpected capture response %+v", captured)
	}

	rec = api.do(http.MethodGet, "/wallets/"+id+"/holds?status=captured", "t1", nil)
	holds := decode[dto.ListHoldsResponse](t, rec)
	if len(holds.Holds) != 1 || holds.Holds[0].EntryID != captured.Entry.ID {
		t.Fatalf("unexpected holds %+v", holds)
	}

	rec = api.do(http.MethodGet, "/wallets/"+id+"/entries?entry_type=debit_hold_capture", "t1", nil)
	entries := decode[dto.ListEntriesResponse](t, rec)
	if entries.Pagination.Total != 1 || entries.Entries[0].Amount != 80 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestTransferHandler_Create(t *testing.T) {
	api := newTestAPI(t)
	from := api.createWallet("t1", "VENDOR", "v-1")
	to := api.createWallet("t1", "PLATFORM", "")
	api.do(http.MethodPost, "/wallets/"+from+"/mutations", "t1", map[string]any{"action": "credit", "amount": 100, "entry_type": "CREDIT_SALE_PROCEEDS"})

	body := map[string]any{"from_wallet_id": from, "to_wallet_id": to, "amount": 40, "idempotency_key": "tr-1"}
	rec := api.do(http.MethodPost, "/transfers", "t1", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	resp := decode[dto.TransferResponse](t, rec)
	if resp.FromWallet.Balance != 60 || resp.ToWallet.Balance != 40 || resp.DebitEntry.TransferID != resp.CreditEntry.TransferID {
		t.Fatalf("unexpected transfer %+v", resp)
	}

	rec = api.do(http.MethodPost, "/transfers", "t1", body)
	if rec.Code != http.StatusOK || !decode[dto.TransferResponse](t, rec).IsDuplicate {
		t.Fatalf("replay: expected duplicate 200, got %d %s", rec.Code, rec.Body.String())
	}

	same := map[string]any{"from_wallet_id": from, "to_wallet_id": from, "amount": 1, "idempotency_key": "tr-2"}
	if rec := api.do(http.MethodPost, "/transfers", "t1", same); rec.Code != http.StatusBadRequest {
		t.Fatalf("same wallet: expected 400, got %d", rec.Code)
	}

	if rec := api.do(http.MethodPost, "/transfers", "t1", map[string]any{"to_wallet_id": to, "amount": 1}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing source: expected 400, got %d", rec.Code)
	}
}

func TestWalletHandler_UpdateStatusAndRecalculate(t *testing.T) {
	api := newTestAPI(t)
	id := api.createWallet("t1", "CUSTOMER", "c-1")

	rec := api.do(http.MethodPatch, "/wallets/"+id, "t1", map[string]any{"status": "FROZEN", "recalculate": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	resp := decode[dto.UpdateWalletResponse](t, rec)
	if resp.Wallet.Status != "FROZEN" || resp.Reconciliation == nil || !resp.Reconciliation.Consistent {
		t.Fatalf("unexpected update response %+v", resp)
	}

	rec = api.do(http.MethodPost, "/wallets/"+id+"/mutations", "t1", map[string]any{"action": "credit", "amount": 5, "entry_type": "CREDIT_TOPUP"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("credit on frozen wallet: expected 422, got %d", rec.Code)
	}

	if rec := api.do(http.MethodPatch, "/wallets/"+id, "t1", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty update: expected 400, got %d", rec.Code)
	}
	if rec := api.do(http.MethodPatch, "/wallets/"+id, "t1", map[string]any{"status": "DELETED"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: expected 400, got %d", rec.Code)
	}

	rec = api.do(http.MethodGet, "/wallets/"+id+"/reconciliation", "t1", nil)
	if got := decode[dto.ReconciliationResponse](t, rec); rec.Code != http.StatusOK || got.WalletID != id || !got.Consistent {
		t.Fatalf("unexpected reconciliation %d %+v", rec.Code, got)
	}

	rec = api.do(http.MethodGet, "/reconciliation", "t1", nil)
	tenant := decode[dto.TenantReconciliationResponse](t, rec)
	if tenant.WalletsChecked != 1 || len(tenant.Discrepancies) != 0 || !tenant.TotalStoredBalance.IsZero() {
		t.Fatalf("unexpected tenant reconciliation %+v", tenant)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/wallets?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/wallets?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}
}
