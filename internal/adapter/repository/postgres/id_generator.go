package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates lexicographically sortable IDs for wallets,
// entries, transfers, outbox events and audit logs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID. ulid.Make is monotonic within a process.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
