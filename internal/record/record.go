// Package record owns the lifecycle of inventory records: purchased lots,
// sell commitments and the sales that pair the two.
package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind discriminates the three record variants.
type Kind string

const (
	KindInventory Kind = "inventory"
	KindOrder     Kind = "order"
	KindSale      Kind = "sale"
)

// Status values. Each variant only uses its own subset: inventory moves
// through Available/Reserved/Closed/Cancelled, orders through
// Unfulfilled/Reserved/Completed/Cancelled, sales through
// Reserved/Completed.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnfulfilled Status = "unfulfilled"
	StatusReserved    Status = "reserved"
	StatusClosed      Status = "closed"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

// Record is the common envelope shared by all three variants. Exactly one of
// Purchase, Order or Sale is set, matching Kind; variant-specific fields
// live on the payloads so they cannot leak across kinds.
type Record struct {
	ID       uuid.UUID
	Org      string
	Number   int64
	Kind     Kind
	EventID  *uuid.UUID
	Quantity int
	Section  string
	Row      string

	// Seats holds per-seat assignments; never longer than Quantity.
	Seats []string

	Notes         string
	TransactionID uuid.UUID

	Purchase *PurchaseDetails
	Order    *OrderDetails
	Sale     *SaleDetails

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// PurchaseDetails is the inventory variant: a lot bought from a vendor.
type PurchaseDetails struct {
	Status     Status
	Cost       *decimal.Decimal
	MemberID   string
	BoughtFrom string
	VendorID   *uuid.UUID

	// SaleID points at the live sale while the lot is reserved.
	SaleID *uuid.UUID
}

// OrderDetails is the order variant: a commitment to sell, not yet fulfilled.
type OrderDetails struct {
	Status      Status
	Selling     *decimal.Decimal
	OrderNumber string
	SoldTo      string
	VendorID    *uuid.UUID
	SaleID      *uuid.UUID
}

// SaleDetails pairs one inventory record with one order record.
type SaleDetails struct {
	Status            Status
	Cost              *decimal.Decimal
	Selling           *decimal.Decimal
	SoldTo            string
	VendorID          *uuid.UUID
	SourceInventoryID uuid.UUID
	SourceOrderID     uuid.UUID
}

// Status returns the variant's lifecycle status.
func (r *Record) Status() Status {
	switch {
	case r.Purchase != nil:
		return r.Purchase.Status
	case r.Order != nil:
		return r.Order.Status
	case r.Sale != nil:
		return r.Sale.Status
	default:
		return ""
	}
}

type ListFilter struct {
	Kind    *Kind
	Status  *Status
	EventID *uuid.UUID
}
