package domain

import "time"

// MaxIdempotencyKeyLength bounds client-supplied keys.
const MaxIdempotencyKeyLength = 255

// IdempotencyRecord maps (WalletID, Key) to the entry a mutation produced.
type IdempotencyRecord struct {
	Key           string
	WalletID      string
	ResultEntryID string
	CreatedAt     time.Time
}
