package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewWallet(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name       string
		tenant     string
		walletType WalletType
		owner      string
		wantErr    error
	}{
		{"vendor with owner", "t1", WalletTypeVendor, "v1", nil},
		{"customer with owner", "t1", WalletTypeCustomer, "c1", nil},
		{"platform without owner", "t1", WalletTypePlatform, "", nil},
		{"vendor missing owner", "t1", WalletTypeVendor, "", ErrOwnerRequired},
		{"customer missing owner", "t1", WalletTypeCustomer, "", ErrOwnerRequired},
		{"platform with owner", "t1", WalletTypePlatform, "p", ErrOwnerNotAllowed},
		{"unknown type", "t1", WalletType("BANK"), "x", ErrInvalidWalletType},
		{"missing tenant", "", WalletTypeVendor, "v1", ErrTenantRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWallet("w1", tt.tenant, tt.walletType, tt.owner, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if KindOf(err) != KindValidation {
					t.Fatalf("expected validation kind, got %s", KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w.Status != WalletStatusActive || w.Balance != 0 || w.PendingBalance != 0 || w.Version != 1 {
				t.Fatalf("unexpected initial wallet state: %+v", w)
			}
		})
	}
}

func TestWalletValidateDebitIgnoresHolds(t *testing.T) {
	w := &Wallet{Balance: 100, PendingBalance: 80}

	if err := w.ValidateDebit(100); err != nil {
		t.Fatalf("debit of full balance should pass, got %v", err)
	}
	if err := w.ValidateDebit(101); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestWalletValidateHoldUsesAvailable(t *testing.T) {
	w := &Wallet{Balance: 100, PendingBalance: 80}

	if err := w.ValidateHold(20); err != nil {
		t.Fatalf("hold within available should pass, got %v", err)
	}
	if err := w.ValidateHold(21); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestWalletApplyBumpsVersion(t *testing.T) {
	now := time.Now()
	w := &Wallet{Balance: 70, Version: 3}

	w.ApplyHold(25, now)
	if w.PendingBalance != 25 || w.Balance != 70 || w.Version != 4 {
		t.Fatalf("unexpected state after hold: %+v", w)
	}

	w.ApplyCapture(25, now)
	if w.PendingBalance != 0 || w.Balance != 45 || w.Version != 5 {
		t.Fatalf("unexpected state after capture: %+v", w)
	}

	w.ApplyCredit(5, now)
	w.ApplyDebit(10, now)
	if w.Balance != 40 || w.Version != 7 {
		t.Fatalf("unexpected state after credit/debit: %+v", w)
	}
}

func TestWalletTransitionTo(t *testing.T) {
	now := time.Now()

	t.Run("freeze and unfreeze", func(t *testing.T) {
		w := &Wallet{ID: "w", Status: WalletStatusActive, Version: 1}
		changed, err := w.TransitionTo(WalletStatusFrozen, now)
		if err != nil || !changed {
			t.Fatalf("expected change, got changed=%v err=%v", changed, err)
		}
		if err := w.EnsureActive(); !errors.Is(err, ErrWalletNotActive) {
			t.Fatalf("frozen wallet should not be active, got %v", err)
		}
		if _, err := w.TransitionTo(WalletStatusActive, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.Version != 3 {
			t.Fatalf("expected version 3, got %d", w.Version)
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		w := &Wallet{Status: WalletStatusActive, Version: 1}
		changed, err := w.TransitionTo(WalletStatusActive, now)
		if err != nil || changed || w.Version != 1 {
			t.Fatalf("expected no-op, got changed=%v err=%v version=%d", changed, err, w.Version)
		}
	})

	t.Run("closed is terminal", func(t *testing.T) {
		w := &Wallet{Status: WalletStatusClosed}
		if _, err := w.TransitionTo(WalletStatusActive, now); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("close requires no open holds", func(t *testing.T) {
		w := &Wallet{Status: WalletStatusActive, PendingBalance: 5}
		if _, err := w.TransitionTo(WalletStatusClosed, now); !errors.Is(err, ErrPendingHolds) {
			t.Fatalf("expected ErrPendingHolds, got %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		w := &Wallet{Status: WalletStatusActive}
		if _, err := w.TransitionTo(WalletStatus("GONE"), now); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})
}
