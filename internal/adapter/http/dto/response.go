package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenant_id"`
	Type             string    `json:"type"`
	OwnerID          string    `json:"owner_id,omitempty"`
	Balance          int64     `json:"balance"`
	PendingBalance   int64     `json:"pending_balance"`
	AvailableBalance int64     `json:"available_balance"`
	Status           string    `json:"status"`
	Version          int64     `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// WalletFromDomain converts domain wallet to response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	if w == nil {
		return nil
	}
	return &WalletResponse{
		ID:               w.ID,
		TenantID:         w.TenantID,
		Type:             string(w.Type),
		OwnerID:          w.OwnerID,
		Balance:          w.Balance,
		PendingBalance:   w.PendingBalance,
		AvailableBalance: w.Available(),
		Status:           string(w.Status),
		Version:          w.Version,
		CreatedAt:        w.CreatedAt,
		UpdatedAt:        w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID             string    `json:"id"`
	WalletID       string    `json:"wallet_id"`
	EntryType      string    `json:"entry_type"`
	Amount         int64     `json:"amount"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	Description    string    `json:"description,omitempty"`
	TransferID     string    `json:"transfer_id,omitempty"`
	BalanceBefore  int64     `json:"balance_before"`
	BalanceAfter   int64     `json:"balance_after"`
	WalletVersion  int64     `json:"wallet_version"`
	CreatedAt      time.Time `json:"created_at"`
}

func EntryFromDomain(e *domain.Entry) *EntryResponse {
	if e == nil {
		return nil
	}
	return &EntryResponse{
		ID:             e.ID,
		WalletID:       e.WalletID,
		EntryType:      string(e.EntryType),
		Amount:         e.Amount,
		IdempotencyKey: e.IdempotencyKey,
		ReferenceType:  e.ReferenceType,
		ReferenceID:    e.ReferenceID,
		Description:    e.Description,
		TransferID:     e.TransferID,
		BalanceBefore:  e.BalanceBefore,
		BalanceAfter:   e.BalanceAfter,
		WalletVersion:  e.WalletVersion,
		CreatedAt:      e.CreatedAt,
	}
}

func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

type HoldResponse struct {
	HoldID    string     `json:"hold_id"`
	WalletID  string     `json:"wallet_id"`
	Amount    int64      `json:"amount"`
	Status    string     `json:"status"`
	EntryID   string     `json:"entry_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

func HoldFromDomain(h *domain.Hold) *HoldResponse {
	if h == nil {
		return nil
	}
	return &HoldResponse{
		HoldID:    h.ID,
		WalletID:  h.WalletID,
		Amount:    h.Amount,
		Status:    string(h.Status),
		EntryID:   h.EntryID,
		CreatedAt: h.CreatedAt,
		ClosedAt:  h.ClosedAt,
	}
}

func HoldsFromDomain(holds []*domain.Hold) []*HoldResponse {
	result := make([]*HoldResponse, len(holds))
	for i, h := range holds {
		result[i] = HoldFromDomain(h)
	}
	return result
}

// Pagination describes one page of a list response.
type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type ListWalletsResponse struct {
	Wallets    []*WalletResponse `json:"wallets"`
	Pagination Pagination        `json:"pagination"`
}

type ListEntriesResponse struct {
	Entries    []*EntryResponse `json:"entries"`
	Pagination Pagination       `json:"pagination"`
}

type ListHoldsResponse struct {
	Holds      []*HoldResponse `json:"holds"`
	Pagination Pagination      `json:"pagination"`
}

// MutationResponse is returned by every wallet mutation.
type MutationResponse struct {
	Wallet      *WalletResponse `json:"wallet"`
	Entry       *EntryResponse  `json:"entry,omitempty"`
	Hold        *HoldResponse   `json:"hold,omitempty"`
	IsDuplicate bool            `json:"is_duplicate"`
}

func MutationFromResult(r *usecase.Result) *MutationResponse {
	return &MutationResponse{
		Wallet:      WalletFromDomain(r.Wallet),
		Entry:       EntryFromDomain(r.Entry),
		Hold:        HoldFromDomain(r.Hold),
		IsDuplicate: r.IsDuplicate,
	}
}

// TransferResponse carries both legs of a transfer.
type TransferResponse struct {
	TransferID  string          `json:"transfer_id"`
	FromWallet  *WalletResponse `json:"from_wallet"`
	ToWallet    *WalletResponse `json:"to_wallet"`
	DebitEntry  *EntryResponse  `json:"debit_entry"`
	CreditEntry *EntryResponse  `json:"credit_entry"`
	IsDuplicate bool            `json:"is_duplicate"`
}

func TransferFromResult(t *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		TransferID:  t.TransferID,
		FromWallet:  WalletFromDomain(t.FromWallet),
		ToWallet:    WalletFromDomain(t.ToWallet),
		DebitEntry:  EntryFromDomain(t.DebitEntry),
		CreditEntry: EntryFromDomain(t.CreditEntry),
		IsDuplicate: t.IsDuplicate,
	}
}

type ReconciliationResponse struct {
	WalletID              string    `json:"wallet_id"`
	ComputedBalance       int64     `json:"computed_balance"`
	StoredBalance         int64     `json:"stored_balance"`
	Drift                 int64     `json:"drift"`
	EntryCount            int64     `json:"entry_count"`
	ComputedPending       int64     `json:"computed_pending"`
	StoredPending         int64     `json:"stored_pending"`
	PendingDrift          int64     `json:"pending_drift"`
	FirstDivergentEntryID string    `json:"first_divergent_entry_id,omitempty"`
	Consistent            bool      `json:"consistent"`
	CheckedAt             time.Time `json:"checked_at"`
}

func ReconciliationFromReport(r *usecase.ReconciliationReport) *ReconciliationResponse {
	if r == nil {
		return nil
	}
	return &ReconciliationResponse{
		WalletID:              r.WalletID,
		ComputedBalance:       r.ComputedBalance,
		StoredBalance:         r.StoredBalance,
		Drift:                 r.Drift,
		EntryCount:            r.EntryCount,
		ComputedPending:       r.ComputedPending,
		StoredPending:         r.StoredPending,
		PendingDrift:          r.PendingDrift,
		FirstDivergentEntryID: r.FirstDivergentEntryID,
		Consistent:            r.Consistent(),
		CheckedAt:             r.CheckedAt,
	}
}

// UpdateWalletResponse is returned by PATCH /wallets/{id}.
type UpdateWalletResponse struct {
	Wallet         *WalletResponse         `json:"wallet"`
	Reconciliation *ReconciliationResponse `json:"reconciliation,omitempty"`
}

type TenantReconciliationResponse struct {
	TenantID           string                    `json:"tenant_id"`
	WalletsChecked     int                       `json:"wallets_checked"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	TotalStoredBalance decimal.Decimal           `json:"total_stored_balance"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

func TenantReconciliationFromReport(r *usecase.TenantReconciliationReport) *TenantReconciliationResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromReport(d)
	}
	return &TenantReconciliationResponse{
		TenantID:           r.TenantID,
		WalletsChecked:     r.WalletsChecked,
		Discrepancies:      discrepancies,
		TotalStoredBalance: r.TotalStoredBalance,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}
