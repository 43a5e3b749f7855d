package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/counterparty"
	"github.com/stubdesk/backoffice/internal/fault"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetVendor(ctx context.Context, org string, id uuid.UUID) (*counterparty.Vendor, error) {
	query := `
		SELECT id, org_id, name, balance, created_at, updated_at
		FROM vendors
		WHERE id = $1 AND org_id = $2
	`

	var v counterparty.Vendor
	err := s.db.QueryRowContext(ctx, query, id, org).Scan(
		&v.ID, &v.Org, &v.Name, &v.Balance, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fault.NotFoundf("vendor %s", id)
		}

		return nil, fmt.Errorf("getting vendor: %w", err)
	}

	return &v, nil
}

func (s *Store) GetBankAccount(ctx context.Context, org string, id uuid.UUID) (*counterparty.BankAccount, error) {
	query := `
		SELECT id, org_id, name, balance, created_at, updated_at
		FROM bank_accounts
		WHERE id = $1 AND org_id = $2
	`

	var b counterparty.BankAccount
	err := s.db.QueryRowContext(ctx, query, id, org).Scan(
		&b.ID, &b.Org, &b.Name, &b.Balance, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fault.NotFoundf("bank account %s", id)
		}

		return nil, fmt.Errorf("getting bank account: %w", err)
	}

	return &b, nil
}

func (s *Store) AdjustVendorBalance(ctx context.Context, org string, id uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE vendors
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND org_id = $3
	`

	res, err := s.db.ExecContext(ctx, query, delta, id, org)
	if err != nil {
		return fmt.Errorf("adjusting vendor balance: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fault.NotFoundf("vendor %s", id)
	}

	return nil
}

func (s *Store) AdjustBankBalance(ctx context.Context, org string, id uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE bank_accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND org_id = $3
	`

	res, err := s.db.ExecContext(ctx, query, delta, id, org)
	if err != nil {
		return fmt.Errorf("adjusting bank balance: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fault.NotFoundf("bank account %s", id)
	}

	return nil
}
