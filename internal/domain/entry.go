package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the sign of a balance change.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// EntryType classifies a ledger entry. The CREDIT_/DEBIT_ prefix carries its
// direction so amounts stay unsigned.
type EntryType string

const (
	EntryCreditSaleProceeds EntryType = "CREDIT_SALE_PROCEEDS"
	EntryCreditRefund       EntryType = "CREDIT_REFUND"
	EntryCreditTopUp        EntryType = "CREDIT_TOPUP"
	EntryCreditAdjustment   EntryType = "CREDIT_ADJUSTMENT"
	EntryCreditTransferIn   EntryType = "CREDIT_TRANSFER_IN"

	EntryDebitPayout      EntryType = "DEBIT_PAYOUT"
	EntryDebitPurchase    EntryType = "DEBIT_PURCHASE"
	EntryDebitFee         EntryType = "DEBIT_FEE"
	EntryDebitAdjustment  EntryType = "DEBIT_ADJUSTMENT"
	EntryDebitTransferOut EntryType = "DEBIT_TRANSFER_OUT"
	EntryDebitHoldCapture EntryType = "DEBIT_HOLD_CAPTURE"
)

var entryTypes = map[EntryType]struct{}{
	EntryCreditSaleProceeds: {},
	EntryCreditRefund:       {},
	EntryCreditTopUp:        {},
	EntryCreditAdjustment:   {},
	EntryCreditTransferIn:   {},
	EntryDebitPayout:        {},
	EntryDebitPurchase:      {},
	EntryDebitFee:           {},
	EntryDebitAdjustment:    {},
	EntryDebitTransferOut:   {},
	EntryDebitHoldCapture:   {},
}

// ParseEntryType validates s as a known entry type.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := entryTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryType, s)
	}
	return t, nil
}

// Direction derives the sign from the type prefix.
func (t EntryType) Direction() Direction {
	if strings.HasPrefix(string(t), "DEBIT_") {
		return DirectionDebit
	}
	return DirectionCredit
}

// Reserved reports whether t is written only by the engine itself, as a
// transfer leg or a hold capture.
func (t EntryType) Reserved() bool {
	switch t {
	case EntryCreditTransferIn, EntryDebitTransferOut, EntryDebitHoldCapture:
		return true
	}
	return false
}

// ValidateFor checks that t is known and moves money in direction d.
func (t EntryType) ValidateFor(d Direction) error {
	if _, ok := entryTypes[t]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidEntryType, t)
	}
	if t.Direction() != d {
		return fmt.Errorf("%w: %s is not a %s", ErrEntryTypeDirection, t, d)
	}
	return nil
}

// Entry is an immutable ledger record of one balance change.
type Entry struct {
	ID             string
	WalletID       string
	TenantID       string
	EntryType      EntryType
	Amount         int64
	IdempotencyKey string
	ReferenceType  string
	ReferenceID    string
	Description    string
	TransferID     string
	BalanceBefore  int64
	BalanceAfter   int64
	WalletVersion  int64
	CreatedAt      time.Time
}

// SignedAmount returns the amount with the sign implied by EntryType.
func (e *Entry) SignedAmount() int64 {
	if e.EntryType.Direction() == DirectionDebit {
		return -e.Amount
	}
	return e.Amount
}

// Reference links an entry to an external business object.
type Reference struct {
	Type string
	ID   string
}
