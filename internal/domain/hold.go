package domain

import (
	"fmt"
	"time"
)

type HoldStatus string

const (
	HoldStatusOpen     HoldStatus = "OPEN"
	HoldStatusReleased HoldStatus = "RELEASED"
	HoldStatusCaptured HoldStatus = "CAPTURED"
)

func (s HoldStatus) Valid() bool {
	switch s {
	case HoldStatusOpen, HoldStatusReleased, HoldStatusCaptured:
		return true
	}
	return false
}

// Hold reserves funds on a wallet. ID is caller-supplied and unique per wallet.
type Hold struct {
	ID        string
	WalletID  string
	TenantID  string
	Amount    int64
	Status    HoldStatus
	EntryID   string
	CreatedAt time.Time
	ClosedAt  *time.Time
}

// Close moves an OPEN hold to its final status exactly once.
func (h *Hold) Close(status HoldStatus, now time.Time) error {
	if h.Status != HoldStatusOpen {
		return fmt.Errorf("%w: hold %s is %s", ErrHoldClosed, h.ID, h.Status)
	}
	h.Status = status
	h.ClosedAt = &now
	return nil
}
