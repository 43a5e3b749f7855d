// Package ledger owns the money side of every inventory event: one
// transaction per purchase, order, completed sale, membership fee or manual
// payment, tracking the obligation against what has settled.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies what spawned a transaction.
type Kind string

const (
	KindPurchase   Kind = "purchase"
	KindOrder      Kind = "order"
	KindSale       Kind = "sale"
	KindMembership Kind = "membership"
	KindManual     Kind = "manual"
)

// Status is the settlement state of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Direction says which way money moves for a manual transaction.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Mode distinguishes ordinary manual payments from journal vouchers.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeJournal  Mode = "journal"
)

// Epsilon is the settlement tolerance: outstanding amounts at or below it
// are treated as fully settled.
var Epsilon = decimal.New(5, -3)

// Transaction is one ledger entry. AmountPaid and AmountOwed always sum to
// Amount within Epsilon; AmountPaid only grows until the transaction is Paid
// or Cancelled (cancelling resets paid to zero and owed to the full amount).
type Transaction struct {
	ID     uuid.UUID
	Org    string
	Number int64
	Kind   Kind

	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	AmountOwed decimal.Decimal
	Status     Status

	VendorID      *uuid.UUID
	BankAccountID *uuid.UUID

	// Back-reference to the inventory record that spawned this entry, plus
	// a mirror of that record's current status for settlement views.
	RecordID     *uuid.UUID
	RecordKind   string
	RecordStatus string

	// Manual-transaction metadata. ManualReferenceID links the two legs of
	// a journal voucher.
	ManualDirection   *Direction
	ManualMode        *Mode
	JournalVendorID   *uuid.UUID
	ManualReferenceID *uuid.UUID

	Description string

	PaidAt      *time.Time
	PaidBy      string
	CancelledAt *time.Time
	CancelledBy string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// FlowDirection resolves which way money moves: +1 when the organization
// owes the counterparty (purchases, default manual entries), -1 when money
// flows in (orders and sales). An explicit manual direction wins.
func (t *Transaction) FlowDirection() int64 {
	if t.ManualDirection != nil {
		if *t.ManualDirection == DirectionIn {
			return -1
		}

		return 1
	}

	switch t.Kind {
	case KindOrder, KindSale:
		return -1
	default:
		return 1
	}
}

// Outstanding reports the unsettled remainder.
func (t *Transaction) Outstanding() decimal.Decimal {
	return t.AmountOwed
}

// Settled reports whether nothing meaningful remains outstanding.
func (t *Transaction) Settled() bool {
	return t.AmountOwed.Cmp(Epsilon) <= 0
}
