package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/ledger"
)

type transactionResponse struct {
	ID     uuid.UUID     `json:"id"`
	Number int64         `json:"number"`
	Kind   ledger.Kind   `json:"kind"`
	Status ledger.Status `json:"status"`

	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	AmountOwed decimal.Decimal `json:"amount_owed"`

	VendorID      *uuid.UUID `json:"vendor_id,omitempty"`
	BankAccountID *uuid.UUID `json:"bank_account_id,omitempty"`

	RecordID     *uuid.UUID `json:"record_id,omitempty"`
	RecordKind   string     `json:"record_kind,omitempty"`
	RecordStatus string     `json:"record_status,omitempty"`

	Direction         *ledger.Direction `json:"direction,omitempty"`
	Mode              *ledger.Mode      `json:"mode,omitempty"`
	JournalVendorID   *uuid.UUID        `json:"journal_vendor_id,omitempty"`
	ManualReferenceID *uuid.UUID        `json:"manual_reference_id,omitempty"`

	Description string `json:"description,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	PaidBy      string     `json:"paid_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy string     `json:"cancelled_by,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID,
		Number:            tx.Number,
		Kind:              tx.Kind,
		Status:            tx.Status,
		Amount:            tx.Amount,
		AmountPaid:        tx.AmountPaid,
		AmountOwed:        tx.AmountOwed,
		VendorID:          tx.VendorID,
		BankAccountID:     tx.BankAccountID,
		RecordID:          tx.RecordID,
		RecordKind:        tx.RecordKind,
		RecordStatus:      tx.RecordStatus,
		Direction:         tx.ManualDirection,
		Mode:              tx.ManualMode,
		JournalVendorID:   tx.JournalVendorID,
		ManualReferenceID: tx.ManualReferenceID,
		Description:       tx.Description,
		PaidAt:            tx.PaidAt,
		PaidBy:            tx.PaidBy,
		CancelledAt:       tx.CancelledAt,
		CancelledBy:       tx.CancelledBy,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
