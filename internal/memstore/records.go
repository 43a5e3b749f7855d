package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
	"github.com/stubdesk/backoffice/internal/record"
)

// record.Repository implementation. Every batch validates all of its
// preconditions before mutating anything, so a failed guard leaves the
// store untouched, matching the Postgres store's all-or-nothing contract.

func (s *Store) CreateWithTransaction(_ context.Context, r *record.Record, txn *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[r.ID]; exists {
		return fault.Conflictf("record %s already exists", r.ID)
	}

	if err := s.putTxn(txn); err != nil {
		return err
	}

	stored := cloneRecord(r)
	stored.CreatedAt = time.Now()
	s.records[r.ID] = stored
	r.CreatedAt = stored.CreatedAt

	return nil
}

func (s *Store) GetRecord(_ context.Context, org string, id uuid.UUID) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getRecord(org, id)
}

func (s *Store) getRecord(org string, id uuid.UUID) (*record.Record, error) {
	r, ok := s.records[id]
	if !ok || r.Org != org {
		return nil, fault.NotFoundf("record %s", id)
	}

	return cloneRecord(r), nil
}

func (s *Store) ListRecords(_ context.Context, org string, filter record.ListFilter) ([]*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*record.Record

	for _, r := range s.records {
		if r.Org != org {
			continue
		}

		if filter.Kind != nil && r.Kind != *filter.Kind {
			continue
		}

		if filter.Status != nil && r.Status() != *filter.Status {
			continue
		}

		if filter.EventID != nil && (r.EventID == nil || *r.EventID != *filter.EventID) {
			continue
		}

		out = append(out, cloneRecord(r))
	}

	return out, nil
}

func (s *Store) UpdateRecord(_ context.Context, w record.UpdateWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[w.Record.ID]
	if !ok || cur.Org != w.Org {
		return fault.NotFoundf("record %s", w.Record.ID)
	}

	if cur.Status() != w.ExpectStatus {
		return fault.Conflictf("record %s changed concurrently", w.Record.ID)
	}

	var txn *ledger.Transaction

	if w.Txn != nil {
		txn, ok = s.txns[w.Txn.ID]
		if !ok || txn.Org != w.Org {
			return fault.NotFoundf("transaction %s", w.Txn.ID)
		}

		if w.Txn.ExpectStatus != "" && txn.Status != w.Txn.ExpectStatus {
			return fault.Conflictf("transaction %s changed concurrently", w.Txn.ID)
		}
	}

	now := time.Now()

	stored := cloneRecord(w.Record)
	stored.CreatedAt = cur.CreatedAt
	stored.UpdatedAt = &now
	s.records[w.Record.ID] = stored

	if w.Txn != nil {
		if w.Txn.Status != "" {
			txn.Status = w.Txn.Status
		}

		if w.Txn.SetAmount {
			txn.Amount = w.Txn.Amount
			txn.AmountOwed = w.Txn.AmountOwed
		}

		if w.Txn.RecordStatus != "" {
			txn.RecordStatus = string(w.Txn.RecordStatus)
		}

		txn.UpdatedAt = &now
	}

	return nil
}

func (s *Store) CancelRecord(_ context.Context, w record.CancelWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[w.RecordID]
	if !ok || cur.Org != w.Org {
		return fault.NotFoundf("record %s", w.RecordID)
	}

	if cur.Status() != w.ExpectStatus {
		return fault.Conflictf("record %s changed concurrently", w.RecordID)
	}

	txn, ok := s.txns[w.TxnID]
	if !ok || txn.Org != w.Org {
		return fault.NotFoundf("transaction %s", w.TxnID)
	}

	if txn.Status != w.ExpectTxnStatus || !txn.AmountPaid.Equal(w.ExpectTxnPaid) {
		return fault.Conflictf("transaction %s changed concurrently", w.TxnID)
	}

	setRecordStatus(cur, record.StatusCancelled)

	now := time.Now()
	txn.Status = ledger.StatusCancelled
	txn.AmountPaid = decimal.Zero
	txn.AmountOwed = txn.Amount
	txn.BankAccountID = nil
	txn.CancelledAt = &now
	txn.RecordStatus = string(record.StatusCancelled)
	txn.UpdatedAt = &now

	return nil
}

func (s *Store) SplitRecord(_ context.Context, w record.SplitWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[w.Original.ID]
	if !ok || cur.Org != w.Org {
		return fault.NotFoundf("record %s", w.Original.ID)
	}

	if cur.Status() != w.ExpectStatus || cur.Quantity != w.ExpectQuantity {
		return fault.Conflictf("record %s changed concurrently", w.Original.ID)
	}

	txn, ok := s.txns[w.TxnID]
	if !ok || txn.Org != w.Org {
		return fault.NotFoundf("transaction %s", w.TxnID)
	}

	if txn.Status != w.ExpectTxnStatus || !txn.AmountPaid.Equal(w.ExpectTxnPaid) {
		return fault.Conflictf("transaction %s changed concurrently", w.TxnID)
	}

	for _, part := range w.Parts {
		if _, exists := s.records[part.ID]; exists {
			return fault.Conflictf("record %s already exists", part.ID)
		}
	}

	for _, partTxn := range w.NewTransactions {
		if _, exists := s.txns[partTxn.ID]; exists {
			return fault.Conflictf("transaction %s already exists", partTxn.ID)
		}
	}

	now := time.Now()

	stored := cloneRecord(w.Original)
	stored.CreatedAt = cur.CreatedAt
	stored.UpdatedAt = &now
	s.records[stored.ID] = stored

	txn.Amount = w.TxnAmount
	txn.AmountOwed = w.TxnOwed
	txn.UpdatedAt = &now

	for _, part := range w.Parts {
		partStored := cloneRecord(part)
		partStored.CreatedAt = now
		s.records[partStored.ID] = partStored
	}

	for _, partTxn := range w.NewTransactions {
		txnStored := cloneTxn(partTxn)
		txnStored.CreatedAt = now
		s.txns[txnStored.ID] = txnStored
	}

	return nil
}

func (s *Store) AssignRecords(_ context.Context, w record.AssignWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[w.Sale.ID]; exists {
		return fault.Conflictf("record %s already exists", w.Sale.ID)
	}

	inv, ok := s.records[w.InventoryID]
	if !ok || inv.Org != w.Org {
		return fault.NotFoundf("record %s", w.InventoryID)
	}

	ord, ok := s.records[w.OrderID]
	if !ok || ord.Org != w.Org {
		return fault.NotFoundf("record %s", w.OrderID)
	}

	if inv.Status() != record.StatusAvailable {
		return fault.Conflictf("record %s changed concurrently", w.InventoryID)
	}

	if ord.Status() != record.StatusUnfulfilled {
		return fault.Conflictf("record %s changed concurrently", w.OrderID)
	}

	invTxn, ok := s.txns[w.InventoryTxnID]
	if !ok || invTxn.Org != w.Org {
		return fault.NotFoundf("transaction %s", w.InventoryTxnID)
	}

	ordTxn, ok := s.txns[w.OrderTxnID]
	if !ok || ordTxn.Org != w.Org {
		return fault.NotFoundf("transaction %s", w.OrderTxnID)
	}

	now := time.Now()

	sale := cloneRecord(w.Sale)
	sale.CreatedAt = now
	s.records[sale.ID] = sale

	saleID := w.Sale.ID
	inv.Purchase.Status = record.StatusReserved
	inv.Purchase.SaleID = &saleID
	inv.UpdatedAt = &now

	ord.Order.Status = record.StatusReserved
	ord.Order.SaleID = &saleID
	ord.UpdatedAt = &now

	invTxn.RecordStatus = string(record.StatusReserved)
	invTxn.UpdatedAt = &now
	ordTxn.RecordStatus = string(record.StatusReserved)
	ordTxn.UpdatedAt = &now

	return nil
}

func (s *Store) UnassignRecords(_ context.Context, w record.UnassignWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.records[w.SaleID]
	if !ok || sale.Org != w.Org {
		return fault.NotFoundf("record %s", w.SaleID)
	}

	if sale.Status() != record.StatusReserved {
		return fault.Conflictf("record %s changed concurrently", w.SaleID)
	}

	inv, ok := s.records[w.InventoryID]
	if !ok || inv.Org != w.Org || inv.Status() != record.StatusReserved {
		return fault.Conflictf("record %s changed concurrently", w.InventoryID)
	}

	ord, ok := s.records[w.OrderID]
	if !ok || ord.Org != w.Org || ord.Status() != record.StatusReserved {
		return fault.Conflictf("record %s changed concurrently", w.OrderID)
	}

	invTxn, ok := s.txns[w.InventoryTxnID]
	if !ok {
		return fault.NotFoundf("transaction %s", w.InventoryTxnID)
	}

	ordTxn, ok := s.txns[w.OrderTxnID]
	if !ok {
		return fault.NotFoundf("transaction %s", w.OrderTxnID)
	}

	now := time.Now()

	delete(s.records, w.SaleID)

	inv.Purchase.Status = record.StatusAvailable
	inv.Purchase.SaleID = nil
	inv.UpdatedAt = &now

	ord.Order.Status = record.StatusUnfulfilled
	ord.Order.SaleID = nil
	ord.UpdatedAt = &now

	invTxn.RecordStatus = string(record.StatusAvailable)
	invTxn.UpdatedAt = &now
	ordTxn.RecordStatus = string(record.StatusUnfulfilled)
	ordTxn.UpdatedAt = &now

	return nil
}

func (s *Store) CompleteRecords(_ context.Context, w record.CompleteWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.records[w.SaleID]
	if !ok || sale.Org != w.Org || sale.Status() != record.StatusReserved {
		return fault.Conflictf("record %s changed concurrently", w.SaleID)
	}

	inv, ok := s.records[w.InventoryID]
	if !ok || inv.Org != w.Org || inv.Status() != record.StatusReserved {
		return fault.Conflictf("record %s changed concurrently", w.InventoryID)
	}

	ord, ok := s.records[w.OrderID]
	if !ok || ord.Org != w.Org || ord.Status() != record.StatusReserved {
		return fault.Conflictf("record %s changed concurrently", w.OrderID)
	}

	invTxn, ok := s.txns[w.InventoryTxnID]
	if !ok {
		return fault.NotFoundf("transaction %s", w.InventoryTxnID)
	}

	ordTxn, ok := s.txns[w.OrderTxnID]
	if !ok {
		return fault.NotFoundf("transaction %s", w.OrderTxnID)
	}

	now := time.Now()

	sale.Sale.Status = record.StatusCompleted
	sale.UpdatedAt = &now

	inv.Purchase.Status = record.StatusClosed
	inv.UpdatedAt = &now

	ord.Order.Status = record.StatusCompleted
	ord.UpdatedAt = &now

	invTxn.RecordStatus = string(record.StatusClosed)
	invTxn.UpdatedAt = &now
	ordTxn.RecordStatus = string(record.StatusCompleted)
	ordTxn.UpdatedAt = &now

	return nil
}

func setRecordStatus(r *record.Record, status record.Status) {
	switch {
	case r.Purchase != nil:
		r.Purchase.Status = status
	case r.Order != nil:
		r.Order.Status = status
	case r.Sale != nil:
		r.Sale.Status = status
	}
}
