// Package memstore is an in-memory implementation of the record and ledger
// repositories with the same compare-and-swap semantics as the Postgres
// stores: every batch checks its preconditions under one lock and commits
// all-or-nothing. It backs the end-to-end scenario tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/counterparty"
	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
	"github.com/stubdesk/backoffice/internal/record"
	"github.com/stubdesk/backoffice/internal/sequence"
)

type counterKey struct {
	org  string
	kind sequence.Kind
}

type Store struct {
	mu       sync.Mutex
	records  map[uuid.UUID]*record.Record
	txns     map[uuid.UUID]*ledger.Transaction
	counters map[counterKey]int64
	vendors  map[uuid.UUID]*counterparty.Vendor
	banks    map[uuid.UUID]*counterparty.BankAccount
}

func New() *Store {
	return &Store{
		records:  make(map[uuid.UUID]*record.Record),
		txns:     make(map[uuid.UUID]*ledger.Transaction),
		counters: make(map[counterKey]int64),
		vendors:  make(map[uuid.UUID]*counterparty.Vendor),
		banks:    make(map[uuid.UUID]*counterparty.BankAccount),
	}
}

// AddVendor seeds a vendor with a zero balance and returns its id.
func (s *Store) AddVendor(org, name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &counterparty.Vendor{ID: uuid.New(), Org: org, Name: name, CreatedAt: time.Now()}
	s.vendors[v.ID] = v

	return v.ID
}

// AddBankAccount seeds a bank account with a zero balance and returns its id.
func (s *Store) AddBankAccount(org, name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &counterparty.BankAccount{ID: uuid.New(), Org: org, Name: name, CreatedAt: time.Now()}
	s.banks[b.ID] = b

	return b.ID
}

func cloneRecord(r *record.Record) *record.Record {
	out := *r
	out.Seats = append([]string(nil), r.Seats...)

	if r.Purchase != nil {
		details := *r.Purchase
		out.Purchase = &details
	}

	if r.Order != nil {
		details := *r.Order
		out.Order = &details
	}

	if r.Sale != nil {
		details := *r.Sale
		out.Sale = &details
	}

	return &out
}

func cloneTxn(t *ledger.Transaction) *ledger.Transaction {
	out := *t
	return &out
}

// --- sequence.Repository ---

func (s *Store) Increment(_ context.Context, org string, kind sequence.Kind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := counterKey{org: org, kind: kind}
	s.counters[key]++

	return s.counters[key], nil
}

// --- counterparty.Lookup / counterparty.Balances ---

func (s *Store) GetVendor(_ context.Context, org string, id uuid.UUID) (*counterparty.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vendors[id]
	if !ok || v.Org != org {
		return nil, fault.NotFoundf("vendor %s", id)
	}

	out := *v

	return &out, nil
}

func (s *Store) GetBankAccount(_ context.Context, org string, id uuid.UUID) (*counterparty.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.banks[id]
	if !ok || b.Org != org {
		return nil, fault.NotFoundf("bank account %s", id)
	}

	out := *b

	return &out, nil
}

func (s *Store) AdjustVendorBalance(_ context.Context, org string, id uuid.UUID, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vendors[id]
	if !ok || v.Org != org {
		return fault.NotFoundf("vendor %s", id)
	}

	v.Balance = v.Balance.Add(delta)

	return nil
}

func (s *Store) AdjustBankBalance(_ context.Context, org string, id uuid.UUID, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.banks[id]
	if !ok || b.Org != org {
		return fault.NotFoundf("bank account %s", id)
	}

	b.Balance = b.Balance.Add(delta)

	return nil
}

// --- ledger.Repository ---

func (s *Store) CreateTransaction(_ context.Context, t *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putTxn(t)
}

func (s *Store) CreateTransactionPair(_ context.Context, out, in *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.txns[out.ID]; exists {
		return fault.Conflictf("transaction %s already exists", out.ID)
	}

	if _, exists := s.txns[in.ID]; exists {
		return fault.Conflictf("transaction %s already exists", in.ID)
	}

	if err := s.putTxn(out); err != nil {
		return err
	}

	return s.putTxn(in)
}

func (s *Store) putTxn(t *ledger.Transaction) error {
	if _, exists := s.txns[t.ID]; exists {
		return fault.Conflictf("transaction %s already exists", t.ID)
	}

	stored := cloneTxn(t)
	stored.CreatedAt = time.Now()
	s.txns[t.ID] = stored
	t.CreatedAt = stored.CreatedAt

	return nil
}

func (s *Store) GetTransaction(_ context.Context, org string, id uuid.UUID) (*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getTxn(org, id)
}

func (s *Store) getTxn(org string, id uuid.UUID) (*ledger.Transaction, error) {
	t, ok := s.txns[id]
	if !ok || t.Org != org {
		return nil, fault.NotFoundf("transaction %s", id)
	}

	return cloneTxn(t), nil
}

func (s *Store) ListTransactions(_ context.Context, org string, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*ledger.Transaction

	for _, t := range s.txns {
		if t.Org != org {
			continue
		}

		if filter.Kind != nil && t.Kind != *filter.Kind {
			continue
		}

		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}

		if filter.VendorID != nil && (t.VendorID == nil || *t.VendorID != *filter.VendorID) {
			continue
		}

		if filter.RecordID != nil && (t.RecordID == nil || *t.RecordID != *filter.RecordID) {
			continue
		}

		out = append(out, cloneTxn(t))
	}

	return out, nil
}

func (s *Store) ApplySettlement(_ context.Context, w ledger.SettlementWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.txns[w.ID]
	if !ok || t.Org != w.Org {
		return fault.NotFoundf("transaction %s", w.ID)
	}

	if t.Status != w.ExpectStatus || !t.AmountPaid.Equal(w.ExpectPaid) {
		return fault.Conflictf("transaction %s changed concurrently", w.ID)
	}

	t.Status = w.Status
	t.AmountPaid = w.AmountPaid
	t.AmountOwed = w.AmountOwed

	switch {
	case w.ClearBank:
		t.BankAccountID = nil
	case w.BankAccountID != nil:
		id := *w.BankAccountID
		t.BankAccountID = &id
	}

	if w.PaidAt != nil {
		t.PaidAt = w.PaidAt
	}

	if w.PaidBy != "" {
		t.PaidBy = w.PaidBy
	}

	if w.CancelledAt != nil {
		t.CancelledAt = w.CancelledAt
	}

	if w.CancelledBy != "" {
		t.CancelledBy = w.CancelledBy
	}

	now := time.Now()
	t.UpdatedAt = &now

	return nil
}
