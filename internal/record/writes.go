package record

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/ledger"
)

// The write descriptors below declare each multi-item mutation as typed data:
// the rows to change plus the preconditions that must still hold at commit
// time. A store rejects the whole batch with fault.ErrConflict when any
// precondition fails, leaving every row untouched.

// TxnPatch mutates the record's paired ledger transaction inside the same
// atomic batch as the record write.
type TxnPatch struct {
	ID           uuid.UUID
	ExpectStatus ledger.Status

	Status ledger.Status

	// SetAmount re-derives the obligation after a money edit.
	SetAmount  bool
	Amount     decimal.Decimal
	AmountOwed decimal.Decimal

	// RecordStatus mirrors the record's new status onto the transaction.
	RecordStatus Status
}

// UpdateWrite commits a field edit or a user-driven status transition.
type UpdateWrite struct {
	Org          string
	Record       *Record
	ExpectStatus Status
	Txn          *TxnPatch
}

// CancelWrite soft-cancels a record and cascades the paired transaction to
// Cancelled (paid reset to zero, owed restored to the full amount). The
// transaction guard catches a payment landing between the caller's read and
// the commit, which would otherwise be erased without its balance unwind.
type CancelWrite struct {
	Org          string
	RecordID     uuid.UUID
	ExpectStatus Status

	TxnID           uuid.UUID
	ExpectTxnStatus ledger.Status
	ExpectTxnPaid   decimal.Decimal
}

// SplitWrite rewrites the original lot as its first part and inserts the
// remaining parts with freshly minted identities, adjusting the original
// transaction's obligation to the first part's share.
type SplitWrite struct {
	Org string

	Original        *Record
	ExpectStatus    Status
	ExpectQuantity  int
	Parts           []*Record
	NewTransactions []*ledger.Transaction

	TxnID           uuid.UUID
	ExpectTxnStatus ledger.Status
	ExpectTxnPaid   decimal.Decimal
	TxnAmount       decimal.Decimal
	TxnOwed         decimal.Decimal
}

// AssignWrite inserts a sale and reserves both of its sources.
type AssignWrite struct {
	Org  string
	Sale *Record

	InventoryID uuid.UUID
	OrderID     uuid.UUID

	// Mirror targets: the two source transactions' record_status becomes
	// Reserved alongside the reservation.
	InventoryTxnID uuid.UUID
	OrderTxnID     uuid.UUID
}

// UnassignWrite deletes a reserved sale and releases both sources.
type UnassignWrite struct {
	Org    string
	SaleID uuid.UUID

	InventoryID uuid.UUID
	OrderID     uuid.UUID

	InventoryTxnID uuid.UUID
	OrderTxnID     uuid.UUID
}

// CompleteWrite closes out a reserved sale: sale and order complete, the
// inventory lot closes.
type CompleteWrite struct {
	Org    string
	SaleID uuid.UUID

	InventoryID uuid.UUID
	OrderID     uuid.UUID

	InventoryTxnID uuid.UUID
	OrderTxnID     uuid.UUID
}
