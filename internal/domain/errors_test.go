package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{ErrInvalidAmount, KindValidation},
		{fmt.Errorf("%w: wallet w1 is FROZEN", ErrWalletNotActive), KindNotActive},
		{fmt.Errorf("debit: %w", ErrInsufficientBalance), KindInsufficientBalance},
		{ErrWalletOwnership, KindOwnership},
		{ErrCrossTenantTransfer, KindOwnership},
		{ErrHoldNotFound, KindNotFound},
		{ErrSameWallet, KindSameWallet},
		{ErrConcurrentUpdate, KindConflict},
		{ErrVersionConflict, KindInternal},
		{errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestWrappedErrorKeepsMessage(t *testing.T) {
	err := fmt.Errorf("%w: wallet w9", ErrWalletOwnership)
	if !errors.Is(err, ErrWalletOwnership) {
		t.Fatalf("expected wrapped sentinel to match")
	}
	if err.Error() != "wallet does not belong to tenant: wallet w9" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
