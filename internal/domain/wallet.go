package domain

import (
	"fmt"
	"time"
)

// WalletType is the kind of party a wallet belongs to.
type WalletType string

const (
	WalletTypeCustomer WalletType = "CUSTOMER"
	WalletTypeVendor   WalletType = "VENDOR"
	WalletTypePlatform WalletType = "PLATFORM"
)

// Valid reports whether t is a known wallet type.
func (t WalletType) Valid() bool {
	switch t {
	case WalletTypeCustomer, WalletTypeVendor, WalletTypePlatform:
		return true
	}
	return false
}

// WalletStatus is the administrative state of a wallet.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "ACTIVE"
	WalletStatusFrozen WalletStatus = "FROZEN"
	WalletStatusClosed WalletStatus = "CLOSED"
)

func (s WalletStatus) Valid() bool {
	switch s {
	case WalletStatusActive, WalletStatusFrozen, WalletStatusClosed:
		return true
	}
	return false
}

// Wallet is the mutable balance summary for one (tenant, type, owner).
// Balance and PendingBalance are integer minor units.
type Wallet struct {
	ID             string
	TenantID       string
	Type           WalletType
	OwnerID        string
	Balance        int64
	PendingBalance int64
	Status         WalletStatus
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewWallet validates the creation parameters and returns an empty ACTIVE wallet.
func NewWallet(id, tenantID string, walletType WalletType, ownerID string, now time.Time) (*Wallet, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if !walletType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWalletType, walletType)
	}
	switch walletType {
	case WalletTypePlatform:
		if ownerID != "" {
			return nil, ErrOwnerNotAllowed
		}
	default:
		if ownerID == "" {
			return nil, ErrOwnerRequired
		}
	}

	return &Wallet{
		ID:        id,
		TenantID:  tenantID,
		Type:      walletType,
		OwnerID:   ownerID,
		Status:    WalletStatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Available returns the spendable, unheld amount.
func (w *Wallet) Available() int64 {
	return w.Balance - w.PendingBalance
}

// EnsureActive fails unless the wallet accepts mutations.
func (w *Wallet) EnsureActive() error {
	if w.Status != WalletStatusActive {
		return fmt.Errorf("%w: wallet %s is %s", ErrWalletNotActive, w.ID, w.Status)
	}
	return nil
}

// ValidateDebit checks a settled debit against the balance. Holds are not
// considered here.
func (w *Wallet) ValidateDebit(amount int64) error {
	if amount > w.Balance {
		return fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientBalance, w.Balance, amount)
	}
	return nil
}

// ValidateHold checks a reservation against the unheld balance.
func (w *Wallet) ValidateHold(amount int64) error {
	if amount > w.Available() {
		return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientBalance, w.Available(), amount)
	}
	return nil
}

// ApplyCredit adds amount to the balance and bumps the version.
func (w *Wallet) ApplyCredit(amount int64, now time.Time) {
	w.Balance += amount
	w.touch(now)
}

// ApplyDebit subtracts amount from the balance and bumps the version.
func (w *Wallet) ApplyDebit(amount int64, now time.Time) {
	w.Balance -= amount
	w.touch(now)
}

// ApplyHold moves amount into the pending balance.
func (w *Wallet) ApplyHold(amount int64, now time.Time) {
	w.PendingBalance += amount
	w.touch(now)
}

// ApplyRelease removes amount from the pending balance.
func (w *Wallet) ApplyRelease(amount int64, now time.Time) {
	w.PendingBalance -= amount
	w.touch(now)
}

// ApplyCapture settles a held amount as a debit.
func (w *Wallet) ApplyCapture(amount int64, now time.Time) {
	w.PendingBalance -= amount
	w.Balance -= amount
	w.touch(now)
}

// TransitionTo changes the status. It reports whether anything changed.
func (w *Wallet) TransitionTo(status WalletStatus, now time.Time) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if w.Status == status {
		return false, nil
	}
	if w.Status == WalletStatusClosed {
		return false, fmt.Errorf("%w: wallet %s is closed", ErrInvalidTransition, w.ID)
	}
	if status == WalletStatusClosed && w.PendingBalance != 0 {
		return false, fmt.Errorf("%w: pending balance %d", ErrPendingHolds, w.PendingBalance)
	}
	w.Status = status
	w.touch(now)
	return true, nil
}

func (w *Wallet) touch(now time.Time) {
	w.Version++
	w.UpdatedAt = now
}
