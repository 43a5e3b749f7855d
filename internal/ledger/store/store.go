package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Queryer is satisfied by *sql.DB and *sql.Tx so transaction inserts can
// join another store's atomic batch.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	id, org_id, number, kind, amount, amount_paid, amount_owed, status,
	vendor_id, bank_account_id, record_id, record_kind, record_status,
	manual_direction, manual_mode, journal_vendor_id, manual_reference_id,
	description, paid_at, paid_by, cancelled_at, cancelled_by,
	created_at, updated_at
`

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var t ledger.Transaction

	var kind, status string

	var recordKind, recordStatus, direction, mode, paidBy, cancelledBy sql.NullString

	if err := s.Scan(
		&t.ID, &t.Org, &t.Number, &kind, &t.Amount, &t.AmountPaid, &t.AmountOwed, &status,
		&t.VendorID, &t.BankAccountID, &t.RecordID, &recordKind, &recordStatus,
		&direction, &mode, &t.JournalVendorID, &t.ManualReferenceID,
		&t.Description, &t.PaidAt, &paidBy, &t.CancelledAt, &cancelledBy,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Kind = ledger.Kind(kind)
	t.Status = ledger.Status(status)
	t.RecordKind = recordKind.String
	t.RecordStatus = recordStatus.String
	t.PaidBy = paidBy.String
	t.CancelledBy = cancelledBy.String

	if direction.Valid {
		d := ledger.Direction(direction.String)
		t.ManualDirection = &d
	}

	if mode.Valid {
		m := ledger.Mode(mode.String)
		t.ManualMode = &m
	}

	return &t, nil
}

// Insert writes a transaction row through q, which may be a store-managed
// connection or another store's open sql.Tx.
func Insert(ctx context.Context, q Queryer, t *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, org_id, number, kind, amount, amount_paid, amount_owed, status,
			vendor_id, bank_account_id, record_id, record_kind, record_status,
			manual_direction, manual_mode, journal_vendor_id, manual_reference_id,
			description, paid_at, paid_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
		RETURNING created_at
	`

	var direction, mode, recordKind, recordStatus any
	if t.ManualDirection != nil {
		direction = string(*t.ManualDirection)
	}

	if t.ManualMode != nil {
		mode = string(*t.ManualMode)
	}

	if t.RecordKind != "" {
		recordKind = t.RecordKind
	}

	if t.RecordStatus != "" {
		recordStatus = t.RecordStatus
	}

	err := q.QueryRowContext(ctx, query,
		t.ID, t.Org, t.Number, t.Kind, t.Amount, t.AmountPaid, t.AmountOwed, t.Status,
		t.VendorID, t.BankAccountID, t.RecordID, recordKind, recordStatus,
		direction, mode, t.JournalVendorID, t.ManualReferenceID,
		t.Description, t.PaidAt, nullIfEmpty(t.PaidBy),
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func (s *Store) Create(ctx context.Context, t *ledger.Transaction) error {
	return Insert(ctx, s.db, t)
}

func (s *Store) CreatePair(ctx context.Context, out, in *ledger.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := Insert(ctx, dbTx, out); err != nil {
		return err
	}

	if err := Insert(ctx, dbTx, in); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction pair: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, org string, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1 AND org_id = $2`

	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, org))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fault.NotFoundf("transaction %s", id)
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return t, nil
}

func (s *Store) List(ctx context.Context, org string, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE org_id = $1`

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

	if filter.VendorID != nil {
		query += fmt.Sprintf(" AND vendor_id = $%d", argIdx)

		args = append(args, *filter.VendorID)
		argIdx++
	}

	if filter.RecordID != nil {
		query += fmt.Sprintf(" AND record_id = $%d", argIdx)

		args = append(args, *filter.RecordID)
		argIdx++
	}

	query += " ORDER BY number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// ApplySettlement commits a settlement mutation guarded by the expected
// status and paid amount. Zero rows affected means another writer won the
// race; the caller retries from a fresh read.
func (s *Store) ApplySettlement(ctx context.Context, w ledger.SettlementWrite) error {
	query := `
		UPDATE transactions
		SET status = $1, amount_paid = $2, amount_owed = $3,
			bank_account_id = CASE WHEN $4 THEN NULL ELSE COALESCE($5::uuid, bank_account_id) END,
			paid_at = COALESCE($6::timestamptz, paid_at),
			paid_by = COALESCE($7::text, paid_by),
			cancelled_at = COALESCE($8::timestamptz, cancelled_at),
			cancelled_by = COALESCE($9::text, cancelled_by),
			updated_at = NOW()
		WHERE id = $10 AND org_id = $11 AND status = $12 AND amount_paid = $13
	`

	var bank any
	if !w.ClearBank && w.BankAccountID != nil {
		bank = *w.BankAccountID
	}

	args := []any{
		w.Status, w.AmountPaid, w.AmountOwed,
		w.ClearBank, bank,
		w.PaidAt, nullIfEmpty(w.PaidBy), w.CancelledAt, nullIfEmpty(w.CancelledBy),
		w.ID, w.Org, w.ExpectStatus, w.ExpectPaid,
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("applying settlement: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("applying settlement: %w", err)
	}

	if n == 0 {
		return fault.Conflictf("transaction %s changed concurrently", w.ID)
	}

	return nil
}
