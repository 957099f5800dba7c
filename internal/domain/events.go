package domain

import "time"

// Event types
const (
	EventTypeWalletCreated       = "wallet.created"
	EventTypeWalletCredited      = "wallet.credited"
	EventTypeWalletDebited       = "wallet.debited"
	EventTypeWalletStatusChanged = "wallet.status_changed"
	EventTypeHoldPlaced          = "hold.placed"
	EventTypeHoldReleased        = "hold.released"
	EventTypeHoldCaptured        = "hold.captured"
	EventTypeTransferCompleted   = "transfer.completed"
)

// Aggregate types
const (
	AggregateTypeWallet   = "wallet"
	AggregateTypeTransfer = "transfer"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	TenantID      string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// WalletCreatedEvent payload
type WalletCreatedEvent struct {
	WalletID string `json:"wallet_id"`
	TenantID string `json:"tenant_id"`
	Type     string `json:"type"`
	OwnerID  string `json:"owner_id,omitempty"`
}

// WalletMutatedEvent payload for credits and debits.
type WalletMutatedEvent struct {
	WalletID      string `json:"wallet_id"`
	EntryID       string `json:"entry_id"`
	EntryType     string `json:"entry_type"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balance_after"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
}

// WalletStatusChangedEvent payload
type WalletStatusChangedEvent struct {
	WalletID string `json:"wallet_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// HoldEvent payload for placed, released and captured holds.
type HoldEvent struct {
	WalletID string `json:"wallet_id"`
	HoldID   string `json:"hold_id"`
	Amount   int64  `json:"amount"`
	EntryID  string `json:"entry_id,omitempty"`
}

// TransferCompletedEvent payload
type TransferCompletedEvent struct {
	TransferID    string `json:"transfer_id"`
	FromWalletID  string `json:"from_wallet_id"`
	ToWalletID    string `json:"to_wallet_id"`
	DebitEntryID  string `json:"debit_entry_id"`
	CreditEntryID string `json:"credit_entry_id"`
	Amount        int64  `json:"amount"`
}
