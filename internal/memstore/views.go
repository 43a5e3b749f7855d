package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/stubdesk/backoffice/internal/ledger"
	"github.com/stubdesk/backoffice/internal/record"
)

// RecordRepository exposes the store as a record.Repository.
type RecordRepository struct {
	s *Store
}

func (s *Store) Records() *RecordRepository { return &RecordRepository{s: s} }

func (r *RecordRepository) CreateWithTransaction(ctx context.Context, rec *record.Record, txn *ledger.Transaction) error {
	return r.s.CreateWithTransaction(ctx, rec, txn)
}

func (r *RecordRepository) Get(ctx context.Context, org string, id uuid.UUID) (*record.Record, error) {
	return r.s.GetRecord(ctx, org, id)
}

func (r *RecordRepository) List(ctx context.Context, org string, filter record.ListFilter) ([]*record.Record, error) {
	return r.s.ListRecords(ctx, org, filter)
}

func (r *RecordRepository) Update(ctx context.Context, w record.UpdateWrite) error {
	return r.s.UpdateRecord(ctx, w)
}

func (r *RecordRepository) Cancel(ctx context.Context, w record.CancelWrite) error {
	return r.s.CancelRecord(ctx, w)
}

func (r *RecordRepository) Split(ctx context.Context, w record.SplitWrite) error {
	return r.s.SplitRecord(ctx, w)
}

func (r *RecordRepository) Assign(ctx context.Context, w record.AssignWrite) error {
	return r.s.AssignRecords(ctx, w)
}

func (r *RecordRepository) Unassign(ctx context.Context, w record.UnassignWrite) error {
	return r.s.UnassignRecords(ctx, w)
}

func (r *RecordRepository) Complete(ctx context.Context, w record.CompleteWrite) error {
	return r.s.CompleteRecords(ctx, w)
}

// LedgerRepository exposes the store as a ledger.Repository.
type LedgerRepository struct {
	s *Store
}

func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{s: s} }

func (l *LedgerRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	return l.s.CreateTransaction(ctx, t)
}

func (l *LedgerRepository) CreatePair(ctx context.Context, out, in *ledger.Transaction) error {
	return l.s.CreateTransactionPair(ctx, out, in)
}

func (l *LedgerRepository) Get(ctx context.Context, org string, id uuid.UUID) (*ledger.Transaction, error) {
	return l.s.GetTransaction(ctx, org, id)
}

func (l *LedgerRepository) List(ctx context.Context, org string, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	return l.s.ListTransactions(ctx, org, filter)
}

func (l *LedgerRepository) ApplySettlement(ctx context.Context, w ledger.SettlementWrite) error {
	return l.s.ApplySettlement(ctx, w)
}
