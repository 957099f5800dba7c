package domain

import (
	"fmt"
	"strings"
)

// MaxAmount is the largest single movement in minor units.
const MaxAmount int64 = 1_000_000_000_000_000

// ValidateAmount validates a credit, debit, hold or transfer amount.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxAmount)
	}
	return nil
}

// ValidateIdempotencyKey accepts an empty key (no deduplication).
func ValidateIdempotencyKey(key string) error {
	if len(key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: maximum length is %d", ErrKeyTooLong, MaxIdempotencyKeyLength)
	}
	return nil
}

// ValidateScope checks the tenant and wallet identifiers every operation needs.
func ValidateScope(tenantID, walletID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return ErrTenantRequired
	}
	if strings.TrimSpace(walletID) == "" {
		return ErrWalletIDRequired
	}
	return nil
}
