package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/counterparty"
	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
	"github.com/stubdesk/backoffice/internal/sequence"
)

const (
	minSplitParts = 2
	maxSplitParts = 12
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=record
type Repository interface {
	// CreateWithTransaction inserts a record and its paired ledger
	// transaction atomically.
	CreateWithTransaction(ctx context.Context, rec *Record, txn *ledger.Transaction) error

	Get(ctx context.Context, org string, id uuid.UUID) (*Record, error)
	List(ctx context.Context, org string, filter ListFilter) ([]*Record, error)

	// The conditional mutations below commit all-or-nothing; a failed
	// precondition surfaces as fault.ErrConflict with no row changed.
	Update(ctx context.Context, w UpdateWrite) error
	Cancel(ctx context.Context, w CancelWrite) error
	Split(ctx context.Context, w SplitWrite) error
	Assign(ctx context.Context, w AssignWrite) error
	Unassign(ctx context.Context, w UnassignWrite) error
	Complete(ctx context.Context, w CompleteWrite) error
}

type Service struct {
	repo   Repository
	seq    *sequence.Service
	lookup counterparty.Lookup
	ledger *ledger.Service
}

func NewService(repo Repository, seq *sequence.Service, lookup counterparty.Lookup, ledgerSvc *ledger.Service) *Service {
	return &Service{repo: repo, seq: seq, lookup: lookup, ledger: ledgerSvc}
}

type CreatePurchaseParams struct {
	EventID    *uuid.UUID
	Quantity   int
	Section    string
	Row        string
	Seats      []string
	Notes      string
	Cost       *decimal.Decimal
	MemberID   string
	BoughtFrom string
	VendorID   *uuid.UUID
}

type CreateOrderParams struct {
	EventID     *uuid.UUID
	Quantity    int
	Section     string
	Row         string
	Seats       []string
	Notes       string
	Selling     *decimal.Decimal
	OrderNumber string
	SoldTo      string
	VendorID    *uuid.UUID
}

// CreatePurchase records a purchased lot together with its Pending ledger
// transaction in one atomic call.
func (s *Service) CreatePurchase(ctx context.Context, org string, params CreatePurchaseParams) (*Record, error) {
	if err := s.validateEnvelope(ctx, org, params.Quantity, params.Seats, params.Cost, params.VendorID); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:       uuid.New(),
		Org:      org,
		Kind:     KindInventory,
		EventID:  params.EventID,
		Quantity: params.Quantity,
		Section:  params.Section,
		Row:      params.Row,
		Seats:    params.Seats,
		Notes:    params.Notes,
		Purchase: &PurchaseDetails{
			Status:     StatusAvailable,
			Cost:       params.Cost,
			MemberID:   params.MemberID,
			BoughtFrom: params.BoughtFrom,
			VendorID:   params.VendorID,
		},
	}

	return s.create(ctx, rec, sequence.KindPurchase, ledger.KindPurchase, params.Cost, params.VendorID, StatusAvailable)
}

// CreateOrder records a commitment to sell together with its Pending ledger
// transaction in one atomic call.
func (s *Service) CreateOrder(ctx context.Context, org string, params CreateOrderParams) (*Record, error) {
	if err := s.validateEnvelope(ctx, org, params.Quantity, params.Seats, params.Selling, params.VendorID); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:       uuid.New(),
		Org:      org,
		Kind:     KindOrder,
		EventID:  params.EventID,
		Quantity: params.Quantity,
		Section:  params.Section,
		Row:      params.Row,
		Seats:    params.Seats,
		Notes:    params.Notes,
		Order: &OrderDetails{
			Status:      StatusUnfulfilled,
			Selling:     params.Selling,
			OrderNumber: params.OrderNumber,
			SoldTo:      params.SoldTo,
			VendorID:    params.VendorID,
		},
	}

	return s.create(ctx, rec, sequence.KindOrder, ledger.KindOrder, params.Selling, params.VendorID, StatusUnfulfilled)
}

func (s *Service) validateEnvelope(ctx context.Context, org string, quantity int, seats []string, amount *decimal.Decimal, vendorID *uuid.UUID) error {
	if quantity <= 0 {
		return fault.Validationf("quantity must be positive")
	}

	if len(seats) > quantity {
		return fault.Validationf("%d seat assignments exceed quantity %d", len(seats), quantity)
	}

	if amount != nil && amount.IsNegative() {
		return fault.Validationf("amount must not be negative")
	}

	if vendorID != nil {
		if _, err := s.lookup.GetVendor(ctx, org, *vendorID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) create(ctx context.Context, rec *Record, seqKind sequence.Kind, txnKind ledger.Kind, amount *decimal.Decimal, vendorID *uuid.UUID, recordStatus Status) (*Record, error) {
	number, err := s.seq.Next(ctx, rec.Org, seqKind)
	if err != nil {
		return nil, fmt.Errorf("issuing record number: %w", err)
	}

	txnNumber, err := s.seq.Next(ctx, rec.Org, sequence.KindTransaction)
	if err != nil {
		return nil, fmt.Errorf("issuing transaction number: %w", err)
	}

	total := decimal.Zero
	if amount != nil {
		total = *amount
	}

	rec.Number = number

	txn := &ledger.Transaction{
		ID:           uuid.New(),
		Org:          rec.Org,
		Number:       txnNumber,
		Kind:         txnKind,
		Amount:       total,
		AmountPaid:   decimal.Zero,
		AmountOwed:   total,
		Status:       ledger.StatusPending,
		VendorID:     vendorID,
		RecordID:     &rec.ID,
		RecordKind:   string(rec.Kind),
		RecordStatus: string(recordStatus),
	}

	rec.TransactionID = txn.ID

	if err := s.repo.CreateWithTransaction(ctx, rec, txn); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *Service) Get(ctx context.Context, org string, id uuid.UUID) (*Record, error) {
	return s.repo.Get(ctx, org, id)
}

func (s *Service) List(ctx context.Context, org string, filter ListFilter) ([]*Record, error) {
	return s.repo.List(ctx, org, filter)
}

type UpdateParams struct {
	EventID  *uuid.UUID
	Quantity *int
	Section  *string
	Row      *string
	Seats    []string
	Notes    *string
	Status   *Status

	Cost               *decimal.Decimal
	MemberID           *string
	BoughtFrom         *string
	BoughtFromVendorID *uuid.UUID

	Selling            *decimal.Decimal
	OrderNumber        *string
	SoldTo             *string
	SoldToVendorID     *uuid.UUID
}

func (p UpdateParams) touchesOrderFields() bool {
	return p.Selling != nil || p.OrderNumber != nil || p.SoldTo != nil || p.SoldToVendorID != nil
}

func (p UpdateParams) touchesPurchaseFields() bool {
	return p.Cost != nil || p.MemberID != nil || p.BoughtFrom != nil || p.BoughtFromVendorID != nil
}

func (p UpdateParams) touchesFields() bool {
	return p.EventID != nil || p.Quantity != nil || p.Section != nil || p.Row != nil ||
		p.Seats != nil || p.Notes != nil ||
		p.touchesOrderFields() || p.touchesPurchaseFields()
}

// Update edits a record's fields or drives one of the user-facing status
// transitions. Sale records are never directly editable, purchases reject
// order-only fields and orders reject purchase-only fields.
func (s *Service) Update(ctx context.Context, org string, id uuid.UUID, params UpdateParams) (*Record, error) {
	rec, err := s.repo.Get(ctx, org, id)
	if err != nil {
		return nil, err
	}

	switch rec.Kind {
	case KindSale:
		return nil, fault.BusinessRulef("sale records cannot be edited")
	case KindInventory:
		if params.touchesOrderFields() {
			return nil, fault.BusinessRulef("order fields cannot be edited on inventory record %d", rec.Number)
		}
	case KindOrder:
		if params.touchesPurchaseFields() {
			return nil, fault.BusinessRulef("purchase fields cannot be edited on order record %d", rec.Number)
		}
	}

	if params.Status != nil {
		return s.transition(ctx, rec, *params.Status, params)
	}

	return s.applyEdit(ctx, rec, params)
}

// transition handles the user-driven status changes: order Unfulfilled to
// Cancelled and back, inventory Available or Reserved to Closed. A status
// change cannot be combined with field edits.
func (s *Service) transition(ctx context.Context, rec *Record, next Status, params UpdateParams) (*Record, error) {
	cur := rec.Status()
	if next == cur {
		return rec, nil
	}

	if params.touchesFields() {
		return nil, fault.Validationf("a status change cannot be combined with field edits")
	}

	switch {
	case rec.Kind == KindOrder && cur == StatusUnfulfilled && next == StatusCancelled:
		if err := s.cancel(ctx, rec); err != nil {
			return nil, err
		}

		rec.Order.Status = StatusCancelled

		return rec, nil

	case rec.Kind == KindOrder && cur == StatusCancelled && next == StatusUnfulfilled:
		updated := *rec
		details := *rec.Order
		details.Status = StatusUnfulfilled
		updated.Order = &details

		w := UpdateWrite{
			Org:          rec.Org,
			Record:       &updated,
			ExpectStatus: StatusCancelled,
			Txn: &TxnPatch{
				ID:           rec.TransactionID,
				ExpectStatus: ledger.StatusCancelled,
				Status:       ledger.StatusPending,
				RecordStatus: StatusUnfulfilled,
			},
		}

		if err := s.repo.Update(ctx, w); err != nil {
			return nil, err
		}

		return &updated, nil

	case rec.Kind == KindInventory && (cur == StatusAvailable || cur == StatusReserved) && next == StatusClosed:
		updated := *rec
		details := *rec.Purchase
		details.Status = StatusClosed
		updated.Purchase = &details

		w := UpdateWrite{
			Org:          rec.Org,
			Record:       &updated,
			ExpectStatus: cur,
			Txn: &TxnPatch{
				ID:           rec.TransactionID,
				RecordStatus: StatusClosed,
			},
		}

		if err := s.repo.Update(ctx, w); err != nil {
			return nil, err
		}

		return &updated, nil
	}

	return nil, fault.BusinessRulef("%s record %d cannot move from %s to %s", rec.Kind, rec.Number, cur, next)
}

func (s *Service) applyEdit(ctx context.Context, rec *Record, params UpdateParams) (*Record, error) {
	cur := rec.Status()
	if cur == StatusCancelled || cur == StatusClosed || cur == StatusCompleted {
		if params.touchesFields() {
			return nil, fault.BusinessRulef("%s record %d is %s", rec.Kind, rec.Number, cur)
		}
	}

	updated := *rec
	if rec.Purchase != nil {
		details := *rec.Purchase
		updated.Purchase = &details
	}

	if rec.Order != nil {
		details := *rec.Order
		updated.Order = &details
	}

	if params.EventID != nil {
		updated.EventID = params.EventID
	}

	if params.Section != nil {
		updated.Section = *params.Section
	}

	if params.Row != nil {
		updated.Row = *params.Row
	}

	if params.Notes != nil {
		updated.Notes = *params.Notes
	}

	if params.Seats != nil {
		updated.Seats = params.Seats
	}

	structural := params.Quantity != nil || params.Cost != nil || params.Selling != nil
	if structural && cur != StatusAvailable && cur != StatusUnfulfilled {
		return nil, fault.BusinessRulef("quantity and money on %s record %d are fixed while %s", rec.Kind, rec.Number, cur)
	}

	if params.Quantity != nil {
		if *params.Quantity <= 0 {
			return nil, fault.Validationf("quantity must be positive")
		}

		updated.Quantity = *params.Quantity
	}

	if len(updated.Seats) > updated.Quantity {
		return nil, fault.Validationf("%d seat assignments exceed quantity %d", len(updated.Seats), updated.Quantity)
	}

	var txnPatch *TxnPatch

	var newAmount *decimal.Decimal

	switch {
	case rec.Kind == KindInventory:
		if params.MemberID != nil {
			updated.Purchase.MemberID = *params.MemberID
		}

		if params.BoughtFrom != nil {
			updated.Purchase.BoughtFrom = *params.BoughtFrom
		}

		if params.BoughtFromVendorID != nil {
			if _, err := s.lookup.GetVendor(ctx, rec.Org, *params.BoughtFromVendorID); err != nil {
				return nil, err
			}

			updated.Purchase.VendorID = params.BoughtFromVendorID
		}

		if params.Cost != nil {
			updated.Purchase.Cost = params.Cost
			newAmount = params.Cost
		}

	case rec.Kind == KindOrder:
		if params.OrderNumber != nil {
			updated.Order.OrderNumber = *params.OrderNumber
		}

		if params.SoldTo != nil {
			updated.Order.SoldTo = *params.SoldTo
		}

		if params.SoldToVendorID != nil {
			if _, err := s.lookup.GetVendor(ctx, rec.Org, *params.SoldToVendorID); err != nil {
				return nil, err
			}

			updated.Order.VendorID = params.SoldToVendorID
		}

		if params.Selling != nil {
			updated.Order.Selling = params.Selling
			newAmount = params.Selling
		}
	}

	if newAmount != nil {
		if newAmount.IsNegative() {
			return nil, fault.Validationf("amount must not be negative")
		}

		txn, err := s.ledger.Get(ctx, rec.Org, rec.TransactionID)
		if err != nil {
			return nil, err
		}

		if txn.Status != ledger.StatusPending {
			return nil, fault.BusinessRulef("transaction %d has settlement activity", txn.Number)
		}

		txnPatch = &TxnPatch{
			ID:           txn.ID,
			ExpectStatus: ledger.StatusPending,
			SetAmount:    true,
			Amount:       *newAmount,
			AmountOwed:   *newAmount,
		}
	}

	w := UpdateWrite{
		Org:          rec.Org,
		Record:       &updated,
		ExpectStatus: cur,
		Txn:          txnPatch,
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete soft-cancels a record. Only an available lot or an unfulfilled
// order can be removed; the paired transaction cancels in the same batch.
func (s *Service) Delete(ctx context.Context, org string, id uuid.UUID) error {
	rec, err := s.repo.Get(ctx, org, id)
	if err != nil {
		return err
	}

	switch {
	case rec.Kind == KindInventory && rec.Purchase.Status == StatusAvailable:
	case rec.Kind == KindOrder && rec.Order.Status == StatusUnfulfilled:
	case rec.Kind == KindSale:
		return fault.BusinessRulef("sale records are removed by unassigning")
	default:
		return fault.BusinessRulef("%s record %d is %s", rec.Kind, rec.Number, rec.Status())
	}

	return s.cancel(ctx, rec)
}

func (s *Service) cancel(ctx context.Context, rec *Record) error {
	txn, err := s.ledger.Get(ctx, rec.Org, rec.TransactionID)
	if err != nil {
		return err
	}

	w := CancelWrite{
		Org:             rec.Org,
		RecordID:        rec.ID,
		ExpectStatus:    rec.Status(),
		TxnID:           rec.TransactionID,
		ExpectTxnStatus: txn.Status,
		ExpectTxnPaid:   txn.AmountPaid,
	}

	if err := s.repo.Cancel(ctx, w); err != nil {
		return err
	}

	// Cancelling resets the settled amount, so any prior payments unwind
	// from the vendor and bank balances.
	if txn.AmountPaid.IsPositive() {
		s.ledger.ReconcileBalances(ctx, txn, txn.AmountPaid, decimal.Zero, txn.BankAccountID)
	}

	return nil
}
