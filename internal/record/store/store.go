package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
	ledgerStore "github.com/stubdesk/backoffice/internal/ledger/store"
	"github.com/stubdesk/backoffice/internal/record"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectRecordColumns = `
	id, org_id, number, kind, event_id, quantity, section, row_label, seats,
	notes, transaction_id, status, cost, selling, member_id, bought_from,
	bought_from_vendor_id, order_number, sold_to, sold_to_vendor_id, sale_id,
	source_inventory_id, source_order_id, created_at, updated_at
`

func scanRecord(s scanner) (*record.Record, error) {
	var r record.Record

	var kind, status string

	var seats []byte

	var memberID, boughtFrom, orderNumber, soldTo sql.NullString

	var cost, selling decimal.NullDecimal

	var boughtFromVendorID, soldToVendorID, saleID, sourceInventoryID, sourceOrderID *uuid.UUID

	if err := s.Scan(
		&r.ID, &r.Org, &r.Number, &kind, &r.EventID, &r.Quantity, &r.Section, &r.Row, &seats,
		&r.Notes, &r.TransactionID, &status, &cost, &selling, &memberID, &boughtFrom,
		&boughtFromVendorID, &orderNumber, &soldTo, &soldToVendorID, &saleID,
		&sourceInventoryID, &sourceOrderID, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.Kind = record.Kind(kind)

	if len(seats) > 0 {
		if err := json.Unmarshal(seats, &r.Seats); err != nil {
			return nil, fmt.Errorf("decoding seats: %w", err)
		}
	}

	costPtr := optionalDecimal(cost)
	sellingPtr := optionalDecimal(selling)

	switch r.Kind {
	case record.KindInventory:
		r.Purchase = &record.PurchaseDetails{
			Status:     record.Status(status),
			Cost:       costPtr,
			MemberID:   memberID.String,
			BoughtFrom: boughtFrom.String,
			VendorID:   boughtFromVendorID,
			SaleID:     saleID,
		}
	case record.KindOrder:
		r.Order = &record.OrderDetails{
			Status:      record.Status(status),
			Selling:     sellingPtr,
			OrderNumber: orderNumber.String,
			SoldTo:      soldTo.String,
			VendorID:    soldToVendorID,
			SaleID:      saleID,
		}
	case record.KindSale:
		if sourceInventoryID == nil || sourceOrderID == nil {
			return nil, fmt.Errorf("sale record %s is missing source references", r.ID)
		}

		r.Sale = &record.SaleDetails{
			Status:            record.Status(status),
			Cost:              costPtr,
			Selling:           sellingPtr,
			SoldTo:            soldTo.String,
			VendorID:          soldToVendorID,
			SourceInventoryID: *sourceInventoryID,
			SourceOrderID:     *sourceOrderID,
		}
	}

	return &r, nil
}

func optionalDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}

	v := d.Decimal

	return &v
}

func encodeSeats(seats []string) (any, error) {
	if len(seats) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(seats)
	if err != nil {
		return nil, fmt.Errorf("encoding seats: %w", err)
	}

	return b, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, q execer, r *record.Record) error {
	query := `
		INSERT INTO records (
			id, org_id, number, kind, event_id, quantity, section, row_label, seats,
			notes, transaction_id, status, cost, selling, member_id, bought_from,
			bought_from_vendor_id, order_number, sold_to, sold_to_vendor_id, sale_id,
			source_inventory_id, source_order_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, NOW(), NOW())
	`

	seats, err := encodeSeats(r.Seats)
	if err != nil {
		return err
	}

	var (
		cost, selling                             *decimal.Decimal
		memberID, boughtFrom, orderNumber, soldTo any
		boughtVendor, soldVendor, saleID          *uuid.UUID
		sourceInventoryID, sourceOrderID          *uuid.UUID
	)

	switch r.Kind {
	case record.KindInventory:
		cost = r.Purchase.Cost
		memberID = r.Purchase.MemberID
		boughtFrom = r.Purchase.BoughtFrom
		boughtVendor = r.Purchase.VendorID
		saleID = r.Purchase.SaleID
	case record.KindOrder:
		selling = r.Order.Selling
		orderNumber = r.Order.OrderNumber
		soldTo = r.Order.SoldTo
		soldVendor = r.Order.VendorID
		saleID = r.Order.SaleID
	case record.KindSale:
		cost = r.Sale.Cost
		selling = r.Sale.Selling
		soldTo = r.Sale.SoldTo
		soldVendor = r.Sale.VendorID
		srcInv := r.Sale.SourceInventoryID
		srcOrd := r.Sale.SourceOrderID
		sourceInventoryID = &srcInv
		sourceOrderID = &srcOrd
	}

	_, err = q.ExecContext(ctx, query,
		r.ID, r.Org, r.Number, r.Kind, r.EventID, r.Quantity, r.Section, r.Row, seats,
		r.Notes, r.TransactionID, r.Status(), cost, selling, memberID, boughtFrom,
		boughtVendor, orderNumber, soldTo, soldVendor, saleID,
		sourceInventoryID, sourceOrderID,
	)
	if err != nil {
		return fmt.Errorf("creating record: %w", err)
	}

	return nil
}

// CreateWithTransaction inserts the record and its paired ledger transaction
// in one database transaction.
func (s *Store) CreateWithTransaction(ctx context.Context, r *record.Record, txn *ledger.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := insertRecord(ctx, dbTx, r); err != nil {
		return err
	}

	if err := ledgerStore.Insert(ctx, dbTx, txn); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing record: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, org string, id uuid.UUID) (*record.Record, error) {
	query := `SELECT ` + selectRecordColumns + ` FROM records WHERE id = $1 AND org_id = $2`

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, id, org))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fault.NotFoundf("record %s", id)
		}

		return nil, fmt.Errorf("getting record: %w", err)
	}

	return r, nil
}

func (s *Store) List(ctx context.Context, org string, filter record.ListFilter) ([]*record.Record, error) {
	query := `SELECT ` + selectRecordColumns + ` FROM records WHERE org_id = $1`

	args := []any{org}
	argIdx := 2

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argIdx)

		args = append(args, *filter.Kind)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.EventID != nil {
		query += fmt.Sprintf(" AND event_id = $%d", argIdx)

		args = append(args, *filter.EventID)
		argIdx++
	}

	query += " ORDER BY number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []*record.Record

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return records, nil
}
