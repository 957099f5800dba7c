package domain

import "errors"

// ErrorKind is the stable machine-readable classification of a domain error.
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION_ERROR"
	KindNotActive           ErrorKind = "WALLET_NOT_ACTIVE"
	KindInsufficientBalance ErrorKind = "INSUFFICIENT_BALANCE"
	KindOwnership           ErrorKind = "OWNERSHIP_ERROR"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindSameWallet          ErrorKind = "SAME_WALLET"
	KindConflict            ErrorKind = "CONFLICT"
	KindInternal            ErrorKind = "INTERNAL"
)

// Error is a classified domain error. Sentinels below are compared with
// errors.Is; wrap them with fmt.Errorf("%w: ...") to add detail.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	// Validation
	ErrInvalidWalletType    = newError(KindValidation, "invalid wallet type")
	ErrOwnerRequired        = newError(KindValidation, "owner id is required for customer and vendor wallets")
	ErrOwnerNotAllowed      = newError(KindValidation, "platform wallets cannot have an owner")
	ErrTenantRequired       = newError(KindValidation, "tenant id is required")
	ErrWalletIDRequired     = newError(KindValidation, "wallet id is required")
	ErrInvalidAmount        = newError(KindValidation, "amount must be positive")
	ErrAmountTooLarge       = newError(KindValidation, "amount exceeds maximum allowed")
	ErrInvalidEntryType     = newError(KindValidation, "invalid entry type")
	ErrEntryTypeDirection   = newError(KindValidation, "entry type does not match mutation direction")
	ErrReservedEntryType    = newError(KindValidation, "entry type is reserved for transfers and hold captures")
	ErrInvalidStatus        = newError(KindValidation, "invalid wallet status")
	ErrInvalidTransition    = newError(KindValidation, "invalid status transition")
	ErrPendingHolds         = newError(KindValidation, "wallet has open holds")
	ErrWalletExists         = newError(KindValidation, "wallet already exists")
	ErrHoldIDRequired       = newError(KindValidation, "hold id is required")
	ErrHoldExists           = newError(KindValidation, "hold already exists")
	ErrHoldClosed           = newError(KindValidation, "hold is already closed")
	ErrHoldAmountMismatch   = newError(KindValidation, "release amount must match the hold amount")
	ErrIdempotencyKeyReused = newError(KindValidation, "idempotency key reused with different parameters")
	ErrNothingToUpdate      = newError(KindValidation, "nothing to update")
	ErrUnknownCommand       = newError(KindValidation, "unknown command")
	ErrKeyTooLong           = newError(KindValidation, "idempotency key too long")

	// State
	ErrWalletNotActive     = newError(KindNotActive, "wallet not active")
	ErrInsufficientBalance = newError(KindInsufficientBalance, "insufficient balance")

	// Tenancy
	ErrWalletOwnership     = newError(KindOwnership, "wallet does not belong to tenant")
	ErrCrossTenantTransfer = newError(KindOwnership, "transfer must stay within a tenant")

	// Lookup
	ErrWalletNotFound = newError(KindNotFound, "wallet not found")
	ErrEntryNotFound  = newError(KindNotFound, "ledger entry not found")
	ErrHoldNotFound   = newError(KindNotFound, "hold not found")

	ErrSameWallet = newError(KindSameWallet, "cannot transfer to the same wallet")

	// ErrConcurrentUpdate is returned when optimistic retries are exhausted.
	// Callers should retry with the same idempotency key.
	ErrConcurrentUpdate = newError(KindConflict, "concurrent update, retry the request")
	// ErrRequestInFlight means another request with the same idempotency key
	// has not completed yet.
	ErrRequestInFlight = newError(KindConflict, "a request with this idempotency key is in progress")
)

// Internal signals. These never reach callers.
var (
	// ErrVersionConflict means the wallet version changed between read and write.
	ErrVersionConflict = errors.New("wallet version conflict")
	// ErrIdempotencyRecordNotFound means no record exists for (wallet, key).
	ErrIdempotencyRecordNotFound = errors.New("idempotency record not found")
)

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
