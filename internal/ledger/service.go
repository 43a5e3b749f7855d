package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/counterparty"
	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/sequence"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Create(ctx context.Context, t *Transaction) error

	// CreatePair inserts both legs of a journal voucher atomically.
	CreatePair(ctx context.Context, out, in *Transaction) error

	Get(ctx context.Context, org string, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, org string, filter ListFilter) ([]*Transaction, error)

	// ApplySettlement commits a conditional settlement mutation. The write
	// is rejected with fault.ErrConflict when the expected status or paid
	// amount no longer matches, leaving the row untouched.
	ApplySettlement(ctx context.Context, w SettlementWrite) error
}

// SettlementWrite declares the fields a settlement changes together with the
// typed preconditions that must still hold at commit time.
type SettlementWrite struct {
	Org string
	ID  uuid.UUID

	ExpectStatus Status
	ExpectPaid   decimal.Decimal

	Status     Status
	AmountPaid decimal.Decimal
	AmountOwed decimal.Decimal

	BankAccountID *uuid.UUID
	ClearBank     bool

	PaidAt      *time.Time
	PaidBy      string
	CancelledAt *time.Time
	CancelledBy string
}

type ListFilter struct {
	Kind     *Kind
	Status   *Status
	VendorID *uuid.UUID
	RecordID *uuid.UUID
}

type Service struct {
	repo     Repository
	seq      *sequence.Service
	lookup   counterparty.Lookup
	balances counterparty.Balances
}

func NewService(repo Repository, seq *sequence.Service, lookup counterparty.Lookup, balances counterparty.Balances) *Service {
	return &Service{repo: repo, seq: seq, lookup: lookup, balances: balances}
}

type CreateParams struct {
	Kind        Kind
	Amount      decimal.Decimal
	Description string
	VendorID    *uuid.UUID
	Direction   *Direction
	Mode        Mode

	// JournalVendorID is the covering counterparty of a journal voucher.
	JournalVendorID *uuid.UUID
}

// Create records an ad-hoc ledger entry. Standard entries start Pending; a
// journal voucher creates two immediately settled legs that move only the
// two vendor balances, netting against each other.
func (s *Service) Create(ctx context.Context, org string, params CreateParams) ([]*Transaction, error) {
	if params.Kind != KindManual && params.Kind != KindMembership {
		return nil, fault.Validationf("kind %q cannot be created directly", params.Kind)
	}

	if params.Amount.IsNegative() {
		return nil, fault.Validationf("amount must not be negative")
	}

	if params.VendorID != nil {
		if _, err := s.lookup.GetVendor(ctx, org, *params.VendorID); err != nil {
			return nil, err
		}
	}

	if params.Mode == ModeJournal {
		return s.createJournalVoucher(ctx, org, params)
	}

	number, err := s.seq.Next(ctx, org, sequence.KindTransaction)
	if err != nil {
		return nil, fmt.Errorf("issuing transaction number: %w", err)
	}

	mode := params.Mode
	if mode == "" {
		mode = ModeStandard
	}

	t := &Transaction{
		ID:              uuid.New(),
		Org:             org,
		Number:          number,
		Kind:            params.Kind,
		Amount:          params.Amount,
		AmountPaid:      decimal.Zero,
		AmountOwed:      params.Amount,
		Status:          StatusPending,
		VendorID:        params.VendorID,
		ManualDirection: params.Direction,
		Description:     params.Description,
	}

	if params.Kind == KindManual {
		t.ManualMode = &mode
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	return []*Transaction{t}, nil
}

func (s *Service) createJournalVoucher(ctx context.Context, org string, params CreateParams) ([]*Transaction, error) {
	if params.Kind != KindManual {
		return nil, fault.Validationf("journal vouchers are manual transactions")
	}

	if params.VendorID == nil || params.JournalVendorID == nil {
		return nil, fault.Validationf("journal vouchers need both a payee and a covering vendor")
	}

	if _, err := s.lookup.GetVendor(ctx, org, *params.JournalVendorID); err != nil {
		return nil, err
	}

	now := time.Now()
	reference := uuid.New()
	mode := ModeJournal

	newLeg := func(vendorID, counterparty uuid.UUID, direction Direction) (*Transaction, error) {
		number, err := s.seq.Next(ctx, org, sequence.KindTransaction)
		if err != nil {
			return nil, fmt.Errorf("issuing transaction number: %w", err)
		}

		vid := vendorID
		cid := counterparty
		dir := direction
		paidAt := now

		return &Transaction{
			ID:                uuid.New(),
			Org:               org,
			Number:            number,
			Kind:              KindManual,
			Amount:            params.Amount,
			AmountPaid:        params.Amount,
			AmountOwed:        decimal.Zero,
			Status:            StatusPaid,
			VendorID:          &vid,
			ManualDirection:   &dir,
			ManualMode:        &mode,
			JournalVendorID:   &cid,
			ManualReferenceID: &reference,
			Description:       params.Description,
			PaidAt:            &paidAt,
		}, nil
	}

	out, err := newLeg(*params.VendorID, *params.JournalVendorID, DirectionOut)
	if err != nil {
		return nil, err
	}

	in, err := newLeg(*params.JournalVendorID, *params.VendorID, DirectionIn)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreatePair(ctx, out, in); err != nil {
		return nil, err
	}

	// Both legs settle in full with no bank account involved, so only the
	// two vendor balances move.
	s.ReconcileBalances(ctx, out, decimal.Zero, out.Amount, nil)
	s.ReconcileBalances(ctx, in, decimal.Zero, in.Amount, nil)

	return []*Transaction{out, in}, nil
}

func (s *Service) Get(ctx context.Context, org string, id uuid.UUID) (*Transaction, error) {
	return s.repo.Get(ctx, org, id)
}

func (s *Service) List(ctx context.Context, org string, filter ListFilter) ([]*Transaction, error) {
	return s.repo.List(ctx, org, filter)
}

type SetStatusOptions struct {
	BankAccountID *uuid.UUID
	Actor         string
}

// SetStatus settles a transaction in full or cancels it. Paid requires a
// Pending or Partial transaction with a meaningful outstanding amount;
// Cancelled resets the settled amount and releases the bank account.
func (s *Service) SetStatus(ctx context.Context, org string, id uuid.UUID, status Status, opts SetStatusOptions) error {
	t, err := s.repo.Get(ctx, org, id)
	if err != nil {
		return err
	}

	switch status {
	case StatusPaid:
		return s.setPaid(ctx, t, opts)
	case StatusCancelled:
		return s.setCancelled(ctx, t, opts)
	default:
		return fault.Validationf("status %q cannot be set directly", status)
	}
}

func (s *Service) setPaid(ctx context.Context, t *Transaction, opts SetStatusOptions) error {
	if t.Status != StatusPending && t.Status != StatusPartial {
		return fault.BusinessRulef("transaction %d is %s", t.Number, t.Status)
	}

	if t.Settled() {
		return fault.BusinessRulef("transaction %d has nothing outstanding", t.Number)
	}

	bankID := opts.BankAccountID
	if bankID == nil {
		bankID = t.BankAccountID
	}

	if t.AmountPaid.IsPositive() && t.BankAccountID != nil && opts.BankAccountID != nil && *opts.BankAccountID != *t.BankAccountID {
		return fault.BusinessRulef("transaction %d already settles through another bank account", t.Number)
	}

	if opts.BankAccountID != nil {
		if _, err := s.lookup.GetBankAccount(ctx, t.Org, *opts.BankAccountID); err != nil {
			return err
		}
	}

	now := time.Now()
	w := SettlementWrite{
		Org:           t.Org,
		ID:            t.ID,
		ExpectStatus:  t.Status,
		ExpectPaid:    t.AmountPaid,
		Status:        StatusPaid,
		AmountPaid:    t.Amount,
		AmountOwed:    decimal.Zero,
		BankAccountID: bankID,
		PaidAt:        &now,
		PaidBy:        opts.Actor,
	}

	if err := s.repo.ApplySettlement(ctx, w); err != nil {
		return err
	}

	s.ReconcileBalances(ctx, t, t.AmountPaid, t.Amount, bankID)

	return nil
}

func (s *Service) setCancelled(ctx context.Context, t *Transaction, opts SetStatusOptions) error {
	if t.Status == StatusPaid || t.Status == StatusCancelled {
		return fault.BusinessRulef("transaction %d is %s", t.Number, t.Status)
	}

	now := time.Now()
	w := SettlementWrite{
		Org:          t.Org,
		ID:           t.ID,
		ExpectStatus: t.Status,
		ExpectPaid:   t.AmountPaid,
		Status:       StatusCancelled,
		AmountPaid:   decimal.Zero,
		AmountOwed:   t.Amount,
		ClearBank:    true,
		CancelledAt:  &now,
		CancelledBy:  opts.Actor,
	}

	if err := s.repo.ApplySettlement(ctx, w); err != nil {
		return err
	}

	s.ReconcileBalances(ctx, t, t.AmountPaid, decimal.Zero, t.BankAccountID)

	return nil
}

// RecordPartialPayment applies a payment against the outstanding amount. All
// payments on one transaction must settle through the same bank account, and
// a payment may never exceed what is outstanding. The transaction becomes
// Paid once the remainder drops within Epsilon, Partial otherwise.
func (s *Service) RecordPartialPayment(ctx context.Context, org string, id uuid.UUID, amount decimal.Decimal, bankAccountID uuid.UUID, actor string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, fault.Validationf("payment amount must be positive")
	}

	t, err := s.repo.Get(ctx, org, id)
	if err != nil {
		return nil, err
	}

	if t.Status == StatusCancelled || t.Status == StatusPaid {
		return nil, fault.BusinessRulef("transaction %d is %s", t.Number, t.Status)
	}

	if amount.Cmp(t.AmountOwed) > 0 {
		return nil, fault.BusinessRulef("payment %s exceeds outstanding %s", amount, t.AmountOwed)
	}

	if t.AmountPaid.IsPositive() && t.BankAccountID != nil && *t.BankAccountID != bankAccountID {
		return nil, fault.BusinessRulef("transaction %d already settles through another bank account", t.Number)
	}

	if _, err := s.lookup.GetBankAccount(ctx, org, bankAccountID); err != nil {
		return nil, err
	}

	nextPaid := t.AmountPaid.Add(amount)
	if nextPaid.Cmp(t.Amount) > 0 {
		nextPaid = t.Amount
	}

	nextOwed := t.Amount.Sub(nextPaid)
	if nextOwed.IsNegative() {
		nextOwed = decimal.Zero
	}

	nextStatus := StatusPartial
	var paidAt *time.Time
	if nextOwed.Cmp(Epsilon) <= 0 {
		nextStatus = StatusPaid
		now := time.Now()
		paidAt = &now
	}

	bankID := bankAccountID
	w := SettlementWrite{
		Org:           org,
		ID:            t.ID,
		ExpectStatus:  t.Status,
		ExpectPaid:    t.AmountPaid,
		Status:        nextStatus,
		AmountPaid:    nextPaid,
		AmountOwed:    nextOwed,
		BankAccountID: &bankID,
		PaidAt:        paidAt,
	}

	if nextStatus == StatusPaid {
		w.PaidBy = actor
	}

	if err := s.repo.ApplySettlement(ctx, w); err != nil {
		return nil, err
	}

	s.ReconcileBalances(ctx, t, t.AmountPaid, nextPaid, &bankID)

	updated := *t
	updated.Status = nextStatus
	updated.AmountPaid = nextPaid
	updated.AmountOwed = nextOwed
	updated.BankAccountID = &bankID
	updated.PaidAt = paidAt
	if nextStatus == StatusPaid {
		updated.PaidBy = actor
	}

	return &updated, nil
}

// ReconcileBalances applies the vendor and bank balance deltas implied by a
// settled-amount change. It runs after the ledger write has committed and is
// deliberately not part of that atomic batch: a failure here leaves a
// balance lag for a later catch-up rather than rolling back the settlement.
func (s *Service) ReconcileBalances(ctx context.Context, t *Transaction, prevSettled, nextSettled decimal.Decimal, bankID *uuid.UUID) {
	diff := nextSettled.Sub(prevSettled)
	if diff.IsZero() {
		return
	}

	direction := decimal.NewFromInt(t.FlowDirection())

	if t.VendorID != nil {
		delta := direction.Mul(diff)
		if err := s.balances.AdjustVendorBalance(ctx, t.Org, *t.VendorID, delta); err != nil {
			slog.Error("vendor balance adjustment failed",
				"org", t.Org, "transaction", t.ID, "vendor", *t.VendorID, "delta", delta, "error", err)
		}
	}

	if bankID != nil {
		delta := direction.Neg().Mul(diff)
		if err := s.balances.AdjustBankBalance(ctx, t.Org, *bankID, delta); err != nil {
			slog.Error("bank balance adjustment failed",
				"org", t.Org, "transaction", t.ID, "bank_account", *bankID, "delta", delta, "error", err)
		}
	}
}
