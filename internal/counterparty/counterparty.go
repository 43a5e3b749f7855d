// Package counterparty holds the counterparties money moves against: vendors the
// organization buys from and sells to, and the organization's own bank
// accounts. Balances are mutated only through signed deltas derived from
// ledger status changes, never from user input.
package counterparty

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Vendor struct {
	ID        uuid.UUID
	Org       string
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type BankAccount struct {
	ID        uuid.UUID
	Org       string
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt *time.Time
}

//go:generate mockgen -source=counterparty.go -destination=repository_mock.go -package=counterparty

// Lookup validates that referenced counterparties exist before a write is
// attempted against them.
type Lookup interface {
	GetVendor(ctx context.Context, org string, id uuid.UUID) (*Vendor, error)
	GetBankAccount(ctx context.Context, org string, id uuid.UUID) (*BankAccount, error)
}

// Balances applies signed balance deltas as single-row atomic increments.
// These run after the ledger write commits, so a crash in between leaves a
// balance lag that a later catch-up must repair; they are not part of the
// ledger's atomic batch.
type Balances interface {
	AdjustVendorBalance(ctx context.Context, org string, id uuid.UUID, delta decimal.Decimal) error
	AdjustBankBalance(ctx context.Context, org string, id uuid.UUID, delta decimal.Decimal) error
}
