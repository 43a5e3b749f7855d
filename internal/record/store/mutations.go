package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
	ledgerStore "github.com/stubdesk/backoffice/internal/ledger/store"
	"github.com/stubdesk/backoffice/internal/record"
)

// guarded runs a conditional statement inside the batch and converts "no
// rows changed" into a conflict, which aborts the surrounding transaction.
func guarded(ctx context.Context, tx *sql.Tx, what, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	if n == 0 {
		return fault.Conflictf("%s: precondition no longer holds", what)
	}

	return nil
}

func (s *Store) inBatch(ctx context.Context, what string, fn func(tx *sql.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning %s: %w", what, err)
	}
	defer dbTx.Rollback()

	if err := fn(dbTx); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", what, err)
	}

	return nil
}

func updateRecordRow(ctx context.Context, tx *sql.Tx, w record.UpdateWrite) error {
	r := w.Record

	seats, err := encodeSeats(r.Seats)
	if err != nil {
		return err
	}

	query := `
		UPDATE records
		SET event_id = $1, quantity = $2, section = $3, row_label = $4, seats = $5,
			notes = $6, status = $7, cost = $8, selling = $9, member_id = $10,
			bought_from = $11, bought_from_vendor_id = $12, order_number = $13,
			sold_to = $14, sold_to_vendor_id = $15, updated_at = NOW()
		WHERE id = $16 AND org_id = $17 AND status = $18
	`

	var args []any

	switch r.Kind {
	case record.KindInventory:
		args = []any{
			r.EventID, r.Quantity, r.Section, r.Row, seats,
			r.Notes, r.Purchase.Status, r.Purchase.Cost, nil, r.Purchase.MemberID,
			r.Purchase.BoughtFrom, r.Purchase.VendorID, nil,
			nil, nil,
		}
	case record.KindOrder:
		args = []any{
			r.EventID, r.Quantity, r.Section, r.Row, seats,
			r.Notes, r.Order.Status, nil, r.Order.Selling, nil,
			nil, nil, r.Order.OrderNumber,
			r.Order.SoldTo, r.Order.VendorID,
		}
	default:
		return fault.BusinessRulef("%s records cannot be updated", r.Kind)
	}

	args = append(args, r.ID, w.Org, w.ExpectStatus)

	return guarded(ctx, tx, "updating record", query, args...)
}

func applyTxnPatch(ctx context.Context, tx *sql.Tx, org string, p *record.TxnPatch) error {
	query := `
		UPDATE transactions
		SET status = CASE WHEN $1::text <> '' THEN $1::text ELSE status END,
			amount = CASE WHEN $2 THEN $3::numeric ELSE amount END,
			amount_owed = CASE WHEN $2 THEN $4::numeric ELSE amount_owed END,
			record_status = CASE WHEN $5::text <> '' THEN $5::text ELSE record_status END,
			updated_at = NOW()
		WHERE id = $6 AND org_id = $7 AND ($8::text = '' OR status = $8::text)
	`

	return guarded(ctx, tx, "updating paired transaction", query,
		string(p.Status), p.SetAmount, p.Amount, p.AmountOwed,
		string(p.RecordStatus), p.ID, org, string(p.ExpectStatus),
	)
}

func mirrorRecordStatus(ctx context.Context, tx *sql.Tx, org string, txnID uuid.UUID, status record.Status) error {
	query := `
		UPDATE transactions
		SET record_status = $1, updated_at = NOW()
		WHERE id = $2 AND org_id = $3
	`

	return guarded(ctx, tx, "mirroring record status", query, status, txnID, org)
}

func (s *Store) Update(ctx context.Context, w record.UpdateWrite) error {
	return s.inBatch(ctx, "record update", func(tx *sql.Tx) error {
		if err := updateRecordRow(ctx, tx, w); err != nil {
			return err
		}

		if w.Txn != nil {
			return applyTxnPatch(ctx, tx, w.Org, w.Txn)
		}

		return nil
	})
}

func (s *Store) Cancel(ctx context.Context, w record.CancelWrite) error {
	return s.inBatch(ctx, "record cancel", func(tx *sql.Tx) error {
		recordQuery := `
			UPDATE records
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND org_id = $3 AND status = $4
		`

		err := guarded(ctx, tx, "cancelling record", recordQuery,
			record.StatusCancelled, w.RecordID, w.Org, w.ExpectStatus)
		if err != nil {
			return err
		}

		txnQuery := `
			UPDATE transactions
			SET status = $1, amount_paid = 0, amount_owed = amount,
				bank_account_id = NULL, cancelled_at = NOW(),
				record_status = $2, updated_at = NOW()
			WHERE id = $3 AND org_id = $4 AND status = $5 AND amount_paid = $6
		`

		return guarded(ctx, tx, "cancelling paired transaction", txnQuery,
			ledger.StatusCancelled, record.StatusCancelled, w.TxnID, w.Org,
			w.ExpectTxnStatus, w.ExpectTxnPaid)
	})
}

func (s *Store) Split(ctx context.Context, w record.SplitWrite) error {
	return s.inBatch(ctx, "split", func(tx *sql.Tx) error {
		original := w.Original

		seats, err := encodeSeats(original.Seats)
		if err != nil {
			return err
		}

		originalQuery := `
			UPDATE records
			SET quantity = $1, seats = $2, cost = $3, notes = $4, updated_at = NOW()
			WHERE id = $5 AND org_id = $6 AND status = $7 AND quantity = $8
		`

		err = guarded(ctx, tx, "rewriting original record", originalQuery,
			original.Quantity, seats, original.Purchase.Cost, original.Notes,
			original.ID, w.Org, w.ExpectStatus, w.ExpectQuantity)
		if err != nil {
			return err
		}

		txnQuery := `
			UPDATE transactions
			SET amount = $1, amount_owed = $2, updated_at = NOW()
			WHERE id = $3 AND org_id = $4 AND status = $5 AND amount_paid = $6
		`

		err = guarded(ctx, tx, "adjusting original transaction", txnQuery,
			w.TxnAmount, w.TxnOwed, w.TxnID, w.Org, w.ExpectTxnStatus, w.ExpectTxnPaid)
		if err != nil {
			return err
		}

		for _, part := range w.Parts {
			if err := insertRecord(ctx, tx, part); err != nil {
				return err
			}
		}

		for _, txn := range w.NewTransactions {
			if err := ledgerStore.Insert(ctx, tx, txn); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Store) Assign(ctx context.Context, w record.AssignWrite) error {
	return s.inBatch(ctx, "assignment", func(tx *sql.Tx) error {
		if err := insertRecord(ctx, tx, w.Sale); err != nil {
			return err
		}

		reserveQuery := `
			UPDATE records
			SET status = $1, sale_id = $2, updated_at = NOW()
			WHERE id = $3 AND org_id = $4 AND status = $5
		`

		err := guarded(ctx, tx, "reserving inventory", reserveQuery,
			record.StatusReserved, w.Sale.ID, w.InventoryID, w.Org, record.StatusAvailable)
		if err != nil {
			return err
		}

		err = guarded(ctx, tx, "reserving order", reserveQuery,
			record.StatusReserved, w.Sale.ID, w.OrderID, w.Org, record.StatusUnfulfilled)
		if err != nil {
			return err
		}

		if err := mirrorRecordStatus(ctx, tx, w.Org, w.InventoryTxnID, record.StatusReserved); err != nil {
			return err
		}

		return mirrorRecordStatus(ctx, tx, w.Org, w.OrderTxnID, record.StatusReserved)
	})
}

func (s *Store) Unassign(ctx context.Context, w record.UnassignWrite) error {
	return s.inBatch(ctx, "unassignment", func(tx *sql.Tx) error {
		deleteQuery := `
			DELETE FROM records
			WHERE id = $1 AND org_id = $2 AND status = $3
		`

		err := guarded(ctx, tx, "removing sale record", deleteQuery,
			w.SaleID, w.Org, record.StatusReserved)
		if err != nil {
			return err
		}

		releaseQuery := `
			UPDATE records
			SET status = $1, sale_id = NULL, updated_at = NOW()
			WHERE id = $2 AND org_id = $3 AND status = $4 AND sale_id = $5
		`

		err = guarded(ctx, tx, "releasing inventory", releaseQuery,
			record.StatusAvailable, w.InventoryID, w.Org, record.StatusReserved, w.SaleID)
		if err != nil {
			return err
		}

		err = guarded(ctx, tx, "releasing order", releaseQuery,
			record.StatusUnfulfilled, w.OrderID, w.Org, record.StatusReserved, w.SaleID)
		if err != nil {
			return err
		}

		if err := mirrorRecordStatus(ctx, tx, w.Org, w.InventoryTxnID, record.StatusAvailable); err != nil {
			return err
		}

		return mirrorRecordStatus(ctx, tx, w.Org, w.OrderTxnID, record.StatusUnfulfilled)
	})
}

func (s *Store) Complete(ctx context.Context, w record.CompleteWrite) error {
	return s.inBatch(ctx, "sale completion", func(tx *sql.Tx) error {
		statusQuery := `
			UPDATE records
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND org_id = $3 AND status = $4
		`

		err := guarded(ctx, tx, "completing sale", statusQuery,
			record.StatusCompleted, w.SaleID, w.Org, record.StatusReserved)
		if err != nil {
			return err
		}

		err = guarded(ctx, tx, "closing inventory", statusQuery,
			record.StatusClosed, w.InventoryID, w.Org, record.StatusReserved)
		if err != nil {
			return err
		}

		err = guarded(ctx, tx, "completing order", statusQuery,
			record.StatusCompleted, w.OrderID, w.Org, record.StatusReserved)
		if err != nil {
			return err
		}

		if err := mirrorRecordStatus(ctx, tx, w.Org, w.InventoryTxnID, record.StatusClosed); err != nil {
			return err
		}

		return mirrorRecordStatus(ctx, tx, w.Org, w.OrderTxnID, record.StatusCompleted)
	})
}
