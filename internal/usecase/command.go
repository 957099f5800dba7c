package usecase

import (
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// Command is a validated request to the engine. The set of implementations
// is closed: only types in this package satisfy it.
type Command interface {
	Validate() error
	commandName() string
}

type CreateWalletCommand struct {
	TenantID string
	Type     domain.WalletType
	OwnerID  string
}

type CreditCommand struct {
	TenantID       string
	WalletID       string
	Amount         int64
	EntryType      domain.EntryType
	IdempotencyKey string
	Reference      domain.Reference
	Description    string
}

type DebitCommand struct {
	TenantID       string
	WalletID       string
	Amount         int64
	EntryType      domain.EntryType
	IdempotencyKey string
	Reference      domain.Reference
	Description    string
}

type HoldCommand struct {
	TenantID string
	WalletID string
	HoldID   string
	Amount   int64
}

type ReleaseCommand struct {
	TenantID string
	WalletID string
	HoldID   string
	Amount   int64
}

type CaptureCommand struct {
	TenantID    string
	WalletID    string
	HoldID      string
	EntryType   domain.EntryType
	Reference   domain.Reference
	Description string
}

type TransferCommand struct {
	TenantID       string
	FromWalletID   string
	ToWalletID     string
	Amount         int64
	IdempotencyKey string
	Description    string
}

type UpdateStatusCommand struct {
	TenantID string
	WalletID string
	Status   domain.WalletStatus
}

type RecalculateCommand struct {
	TenantID string
	WalletID string
}

func (c CreateWalletCommand) commandName() string { return "create_wallet" }
func (c CreditCommand) commandName() string       { return "credit" }
func (c DebitCommand) commandName() string        { return "debit" }
func (c HoldCommand) commandName() string         { return "hold" }
func (c ReleaseCommand) commandName() string      { return "release" }
func (c CaptureCommand) commandName() string      { return "capture" }
func (c TransferCommand) commandName() string     { return "transfer" }
func (c UpdateStatusCommand) commandName() string { return "update_status" }
func (c RecalculateCommand) commandName() string  { return "recalculate" }

func (c CreateWalletCommand) Validate() error {
	_, err := domain.NewWallet("", c.TenantID, c.Type, c.OwnerID, time.Time{})
	return err
}

func (c CreditCommand) Validate() error {
	return c.input().Validate()
}

func (c DebitCommand) Validate() error {
	return c.input().Validate()
}

func (c HoldCommand) Validate() error {
	return c.input().Validate()
}

func (c ReleaseCommand) Validate() error {
	return c.input().Validate()
}

func (c CaptureCommand) Validate() error {
	return c.input().Validate()
}

func (c TransferCommand) Validate() error {
	return c.input().Validate()
}

func (c UpdateStatusCommand) Validate() error {
	return c.input().Validate()
}

func (c RecalculateCommand) Validate() error {
	return domain.ValidateScope(c.TenantID, c.WalletID)
}

func (c CreditCommand) input() MutateInput {
	return MutateInput{
		TenantID:       c.TenantID,
		WalletID:       c.WalletID,
		Direction:      domain.DirectionCredit,
		Amount:         c.Amount,
		EntryType:      c.EntryType,
		IdempotencyKey: c.IdempotencyKey,
		Reference:      c.Reference,
		Description:    c.Description,
	}
}

func (c DebitCommand) input() MutateInput {
	return MutateInput{
		TenantID:       c.TenantID,
		WalletID:       c.WalletID,
		Direction:      domain.DirectionDebit,
		Amount:         c.Amount,
		EntryType:      c.EntryType,
		IdempotencyKey: c.IdempotencyKey,
		Reference:      c.Reference,
		Description:    c.Description,
	}
}

func (c HoldCommand) input() HoldInput {
	return HoldInput{TenantID: c.TenantID, WalletID: c.WalletID, HoldID: c.HoldID, Amount: c.Amount}
}

func (c ReleaseCommand) input() HoldInput {
	return HoldInput{TenantID: c.TenantID, WalletID: c.WalletID, HoldID: c.HoldID, Amount: c.Amount}
}

func (c UpdateStatusCommand) input() UpdateStatusInput {
	return UpdateStatusInput{TenantID: c.TenantID, WalletID: c.WalletID, Status: c.Status}
}

func (c CaptureCommand) input() CaptureInput {
	return CaptureInput{
		TenantID:    c.TenantID,
		WalletID:    c.WalletID,
		HoldID:      c.HoldID,
		EntryType:   c.EntryType,
		Reference:   c.Reference,
		Description: c.Description,
	}
}

func (c TransferCommand) input() TransferInput {
	return TransferInput{
		TenantID:       c.TenantID,
		FromWalletID:   c.FromWalletID,
		ToWalletID:     c.ToWalletID,
		Amount:         c.Amount,
		IdempotencyKey: c.IdempotencyKey,
		Description:    c.Description,
	}
}

// Result is the outcome of an engine command. Which fields are set depends
// on the command.
type Result struct {
	Wallet      *domain.Wallet
	Entry       *domain.Entry
	Hold        *domain.Hold
	Transfer    *TransferResult
	Report      *ReconciliationReport
	IsDuplicate bool
}
