package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/sequence"
)

// Assign pairs an available lot with an unfulfilled order of the exact same
// quantity, producing a reserved sale. The sale takes its descriptive fields
// from the order first, the inventory's cost, the order's selling price, and
// reuses the order's transaction identity so the ledger entry is not
// duplicated. Sale insert and both source reservations commit atomically.
func (s *Service) Assign(ctx context.Context, org string, inventoryID, orderID uuid.UUID) (*Record, error) {
	inv, err := s.repo.Get(ctx, org, inventoryID)
	if err != nil {
		return nil, err
	}

	ord, err := s.repo.Get(ctx, org, orderID)
	if err != nil {
		return nil, err
	}

	if inv.Kind != KindInventory {
		return nil, fault.BusinessRulef("record %d is not an inventory lot", inv.Number)
	}

	if ord.Kind != KindOrder {
		return nil, fault.BusinessRulef("record %d is not an order", ord.Number)
	}

	if inv.Purchase.Status != StatusAvailable {
		return nil, fault.BusinessRulef("inventory record %d is %s", inv.Number, inv.Purchase.Status)
	}

	if ord.Order.Status != StatusUnfulfilled {
		return nil, fault.BusinessRulef("order record %d is %s", ord.Number, ord.Order.Status)
	}

	if inv.Quantity != ord.Quantity {
		return nil, fault.BusinessRulef("quantity mismatch: inventory has %d, order wants %d", inv.Quantity, ord.Quantity)
	}

	number, err := s.seq.Next(ctx, org, sequence.KindSale)
	if err != nil {
		return nil, fmt.Errorf("issuing record number: %w", err)
	}

	sale := &Record{
		ID:            uuid.New(),
		Org:           org,
		Number:        number,
		Kind:          KindSale,
		EventID:       coalesceID(ord.EventID, inv.EventID),
		Quantity:      ord.Quantity,
		Section:       coalesce(ord.Section, inv.Section),
		Row:           coalesce(ord.Row, inv.Row),
		Seats:         coalesceSeats(ord.Seats, inv.Seats),
		Notes:         coalesce(ord.Notes, inv.Notes),
		TransactionID: ord.TransactionID,
		Sale: &SaleDetails{
			Status:            StatusReserved,
			Cost:              inv.Purchase.Cost,
			Selling:           ord.Order.Selling,
			SoldTo:            ord.Order.SoldTo,
			VendorID:          ord.Order.VendorID,
			SourceInventoryID: inv.ID,
			SourceOrderID:     ord.ID,
		},
	}

	w := AssignWrite{
		Org:            org,
		Sale:           sale,
		InventoryID:    inv.ID,
		OrderID:        ord.ID,
		InventoryTxnID: inv.TransactionID,
		OrderTxnID:     ord.TransactionID,
	}

	if err := s.repo.Assign(ctx, w); err != nil {
		return nil, err
	}

	return sale, nil
}

// Unassign undoes a reserved sale: the lot becomes available again, the
// order unfulfilled, and the sale record is removed.
func (s *Service) Unassign(ctx context.Context, org string, saleID uuid.UUID) error {
	sale, inv, ord, err := s.resolveSale(ctx, org, saleID)
	if err != nil {
		return err
	}

	w := UnassignWrite{
		Org:            org,
		SaleID:         sale.ID,
		InventoryID:    inv.ID,
		OrderID:        ord.ID,
		InventoryTxnID: inv.TransactionID,
		OrderTxnID:     ord.TransactionID,
	}

	return s.repo.Unassign(ctx, w)
}

// Complete finishes a reserved sale: the sale and order complete, the lot
// closes, and the source transactions mirror the new statuses.
func (s *Service) Complete(ctx context.Context, org string, saleID uuid.UUID) error {
	sale, inv, ord, err := s.resolveSale(ctx, org, saleID)
	if err != nil {
		return err
	}

	w := CompleteWrite{
		Org:            org,
		SaleID:         sale.ID,
		InventoryID:    inv.ID,
		OrderID:        ord.ID,
		InventoryTxnID: inv.TransactionID,
		OrderTxnID:     ord.TransactionID,
	}

	return s.repo.Complete(ctx, w)
}

func (s *Service) resolveSale(ctx context.Context, org string, saleID uuid.UUID) (sale, inv, ord *Record, err error) {
	sale, err = s.repo.Get(ctx, org, saleID)
	if err != nil {
		return nil, nil, nil, err
	}

	if sale.Kind != KindSale {
		return nil, nil, nil, fault.BusinessRulef("record %d is not a sale", sale.Number)
	}

	if sale.Sale.Status != StatusReserved {
		return nil, nil, nil, fault.BusinessRulef("sale record %d is %s", sale.Number, sale.Sale.Status)
	}

	inv, err = s.repo.Get(ctx, org, sale.Sale.SourceInventoryID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolving source inventory: %w", err)
	}

	ord, err = s.repo.Get(ctx, org, sale.Sale.SourceOrderID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolving source order: %w", err)
	}

	return sale, inv, ord, nil
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}

	return b
}

func coalesceID(a, b *uuid.UUID) *uuid.UUID {
	if a != nil {
		return a
	}

	return b
}

func coalesceSeats(a, b []string) []string {
	if len(a) > 0 {
		return a
	}

	return b
}
