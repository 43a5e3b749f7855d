package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/record"
)

type recordResponse struct {
	ID            uuid.UUID     `json:"id"`
	Number        int64         `json:"number"`
	Kind          record.Kind   `json:"kind"`
	Status        record.Status `json:"status"`
	EventID       *uuid.UUID    `json:"event_id,omitempty"`
	Quantity      int           `json:"quantity"`
	Section       string        `json:"section,omitempty"`
	Row           string        `json:"row,omitempty"`
	Seats         []string      `json:"seats,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	TransactionID uuid.UUID     `json:"transaction_id"`

	Purchase *purchaseResponse `json:"purchase,omitempty"`
	Order    *orderResponse    `json:"order,omitempty"`
	Sale     *saleResponse     `json:"sale,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type purchaseResponse struct {
	Cost       *decimal.Decimal `json:"cost,omitempty"`
	MemberID   string           `json:"member_id,omitempty"`
	BoughtFrom string           `json:"bought_from,omitempty"`
	VendorID   *uuid.UUID       `json:"vendor_id,omitempty"`
	SaleID     *uuid.UUID       `json:"sale_id,omitempty"`
}

type orderResponse struct {
	Selling     *decimal.Decimal `json:"selling,omitempty"`
	OrderNumber string           `json:"order_number,omitempty"`
	SoldTo      string           `json:"sold_to,omitempty"`
	VendorID    *uuid.UUID       `json:"vendor_id,omitempty"`
	SaleID      *uuid.UUID       `json:"sale_id,omitempty"`
}

type saleResponse struct {
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	Selling           *decimal.Decimal `json:"selling,omitempty"`
	SoldTo            string           `json:"sold_to,omitempty"`
	VendorID          *uuid.UUID       `json:"vendor_id,omitempty"`
	SourceInventoryID uuid.UUID        `json:"source_inventory_id"`
	SourceOrderID     uuid.UUID        `json:"source_order_id"`
}

func toResponse(rec *record.Record) recordResponse {
	resp := recordResponse{
		ID:            rec.ID,
		Number:        rec.Number,
		Kind:          rec.Kind,
		Status:        rec.Status(),
		EventID:       rec.EventID,
		Quantity:      rec.Quantity,
		Section:       rec.Section,
		Row:           rec.Row,
		Seats:         rec.Seats,
		Notes:         rec.Notes,
		TransactionID: rec.TransactionID,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}

	if rec.Purchase != nil {
		resp.Purchase = &purchaseResponse{
			Cost:       rec.Purchase.Cost,
			MemberID:   rec.Purchase.MemberID,
			BoughtFrom: rec.Purchase.BoughtFrom,
			VendorID:   rec.Purchase.VendorID,
			SaleID:     rec.Purchase.SaleID,
		}
	}

	if rec.Order != nil {
		resp.Order = &orderResponse{
			Selling:     rec.Order.Selling,
			OrderNumber: rec.Order.OrderNumber,
			SoldTo:      rec.Order.SoldTo,
			VendorID:    rec.Order.VendorID,
			SaleID:      rec.Order.SaleID,
		}
	}

	if rec.Sale != nil {
		resp.Sale = &saleResponse{
			Cost:              rec.Sale.Cost,
			Selling:           rec.Sale.Selling,
			SoldTo:            rec.Sale.SoldTo,
			VendorID:          rec.Sale.VendorID,
			SourceInventoryID: rec.Sale.SourceInventoryID,
			SourceOrderID:     rec.Sale.SourceOrderID,
		}
	}

	return resp
}

func toResponseList(recs []*record.Record) []recordResponse {
	resp := make([]recordResponse, len(recs))
	for i, rec := range recs {
		resp[i] = toResponse(rec)
	}

	return resp
}
