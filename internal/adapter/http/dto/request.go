package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// Mutation actions accepted by POST /wallets/{id}/mutations.
const (
	ActionCredit  = "credit"
	ActionDebit   = "debit"
	ActionHold    = "hold"
	ActionRelease = "release"
	ActionCapture = "capture"
)

// CreateWalletRequest represents a request to create a wallet.
type CreateWalletRequest struct {
	Type    string `json:"type"     validate:"required,oneof=CUSTOMER VENDOR PLATFORM"`
	OwnerID string `json:"owner_id" validate:"max=128"`
}

func (r *CreateWalletRequest) ToCommand(tenantID string) usecase.CreateWalletCommand {
	return usecase.CreateWalletCommand{
		TenantID: tenantID,
		Type:     domain.WalletType(r.Type),
		OwnerID:  r.OwnerID,
	}
}

// UpdateWalletRequest changes a wallet's status and/or asks for a recalculation.
type UpdateWalletRequest struct {
	Status      *string `json:"status"      validate:"omitempty,oneof=ACTIVE FROZEN CLOSED"`
	Recalculate bool    `json:"recalculate"`
}

// MutationRequest is the body of a wallet mutation.
type MutationRequest struct {
	Action         string          `json:"action"          validate:"required,oneof=credit debit hold release capture"`
	Amount         decimal.Decimal `json:"amount"`
	EntryType      string          `json:"entry_type"      validate:"max=64"`
	IdempotencyKey string          `json:"idempotency_key" validate:"max=255"`
	HoldID         string          `json:"hold_id"         validate:"max=128"`
	ReferenceType  string          `json:"reference_type"  validate:"max=64"`
	ReferenceID    string          `json:"reference_id"    validate:"max=255"`
	Description    string          `json:"description"     validate:"max=1000"`
}

// ToCommand builds the engine command for the requested action.
func (r *MutationRequest) ToCommand(tenantID, walletID string) (usecase.Command, error) {
	ref := domain.Reference{Type: r.ReferenceType, ID: r.ReferenceID}

	switch r.Action {
	case ActionCredit, ActionDebit:
		amount, err := ParseAmount(r.Amount)
		if err != nil {
			return nil, err
		}
		entryType, err := domain.ParseEntryType(r.EntryType)
		if err != nil {
			return nil, err
		}
		if r.Action == ActionCredit {
			return usecase.CreditCommand{
				TenantID:       tenantID,
				WalletID:       walletID,
				Amount:         amount,
				EntryType:      entryType,
				IdempotencyKey: r.IdempotencyKey,
				Reference:      ref,
				Description:    r.Description,
			}, nil
		}
		return usecase.DebitCommand{
			TenantID:       tenantID,
			WalletID:       walletID,
			Amount:         amount,
			EntryType:      entryType,
			IdempotencyKey: r.IdempotencyKey,
			Reference:      ref,
			Description:    r.Description,
		}, nil

	case ActionHold, ActionRelease:
		amount, err := ParseAmount(r.Amount)
		if err != nil {
			return nil, err
		}
		if r.Action == ActionHold {
			return usecase.HoldCommand{TenantID: tenantID, WalletID: walletID, HoldID: r.HoldID, Amount: amount}, nil
		}
		return usecase.ReleaseCommand{TenantID: tenantID, WalletID: walletID, HoldID: r.HoldID, Amount: amount}, nil

	case ActionCapture:
		var entryType domain.EntryType
		if r.EntryType != "" {
			t, err := domain.ParseEntryType(r.EntryType)
			if err != nil {
				return nil, err
			}
			entryType = t
		}
		return usecase.CaptureCommand{
			TenantID:    tenantID,
			WalletID:    walletID,
			HoldID:      r.HoldID,
			EntryType:   entryType,
			Reference:   ref,
			Description: r.Description,
		}, nil

	default:
		return nil, &ValidationError{Fields: map[string]string{"action": fmt.Sprintf("oneof=%s %s %s %s %s",
			ActionCredit, ActionDebit, ActionHold, ActionRelease, ActionCapture)}}
	}
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromWalletID   string          `json:"from_wallet_id"  validate:"required,max=128"`
	ToWalletID     string          `json:"to_wallet_id"    validate:"required,max=128"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotency_key" validate:"max=255"`
	Description    string          `json:"description"     validate:"max=1000"`
}

func (r *CreateTransferRequest) ToCommand(tenantID string) (usecase.TransferCommand, error) {
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return usecase.TransferCommand{}, err
	}
	return usecase.TransferCommand{
		TenantID:       tenantID,
		FromWalletID:   r.FromWalletID,
		ToWalletID:     r.ToWalletID,
		Amount:         amount,
		IdempotencyKey: r.IdempotencyKey,
		Description:    r.Description,
	}, nil
}
