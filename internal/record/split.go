package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/allocation"
	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
	"github.com/stubdesk/backoffice/internal/sequence"
)

// SplitPart describes one part of a split request. Seats are optional; a
// part without its own assignments inherits a slice of the original's.
type SplitPart struct {
	Quantity int
	Seats    []string
}

// Split divides an available lot into 2-12 parts whose quantities sum to the
// original quantity. Cost and the paired transaction's amount and owed are
// distributed proportionally; the first part keeps the original record and
// transaction identities, the rest are minted fresh. The whole rewrite
// commits atomically, so a replay after success loses its preconditions and
// fails as a conflict.
func (s *Service) Split(ctx context.Context, org string, id uuid.UUID, parts []SplitPart) ([]*Record, error) {
	if len(parts) < minSplitParts || len(parts) > maxSplitParts {
		return nil, fault.Validationf("split needs between %d and %d parts, got %d", minSplitParts, maxSplitParts, len(parts))
	}

	rec, err := s.repo.Get(ctx, org, id)
	if err != nil {
		return nil, err
	}

	if rec.Kind != KindInventory {
		return nil, fault.BusinessRulef("only inventory records can be split")
	}

	if rec.Purchase.Status != StatusAvailable {
		return nil, fault.BusinessRulef("inventory record %d is %s", rec.Number, rec.Purchase.Status)
	}

	if rec.Quantity <= 1 {
		return nil, fault.BusinessRulef("inventory record %d has nothing to split", rec.Number)
	}

	quantities := make([]int, len(parts))
	sum := 0

	for i, part := range parts {
		if part.Quantity <= 0 {
			return nil, fault.Validationf("part %d quantity must be positive", i+1)
		}

		if len(part.Seats) > part.Quantity {
			return nil, fault.Validationf("part %d has %d seat assignments for quantity %d", i+1, len(part.Seats), part.Quantity)
		}

		quantities[i] = part.Quantity
		sum += part.Quantity
	}

	if sum != rec.Quantity {
		return nil, fault.Validationf("part quantities sum to %d, expected %d", sum, rec.Quantity)
	}

	txn, err := s.ledger.Get(ctx, org, rec.TransactionID)
	if err != nil {
		return nil, err
	}

	if txn.Status != ledger.StatusPending || txn.AmountPaid.IsPositive() {
		return nil, fault.BusinessRulef("transaction %d has settlement activity", txn.Number)
	}

	costShares := allocation.Shares(rec.Purchase.Cost, quantities, rec.Quantity)
	amountShares := allocation.Shares(&txn.Amount, quantities, rec.Quantity)
	owedShares := allocation.Shares(&txn.AmountOwed, quantities, rec.Quantity)

	seats := splitSeats(rec.Seats, parts)

	// First part reuses the original record and transaction identities.
	// Notes do not carry onto it, only onto the newly minted parts.
	first := *rec
	firstDetails := *rec.Purchase
	firstDetails.Cost = costShares[0]
	first.Purchase = &firstDetails
	first.Quantity = parts[0].Quantity
	first.Seats = seats[0]
	first.Notes = ""

	records := []*Record{&first}

	var newRecords []*Record

	var newTxns []*ledger.Transaction

	for i := 1; i < len(parts); i++ {
		number, err := s.seq.Next(ctx, org, sequence.KindPurchase)
		if err != nil {
			return nil, fmt.Errorf("issuing record number: %w", err)
		}

		txnNumber, err := s.seq.Next(ctx, org, sequence.KindTransaction)
		if err != nil {
			return nil, fmt.Errorf("issuing transaction number: %w", err)
		}

		part := &Record{
			ID:       uuid.New(),
			Org:      org,
			Number:   number,
			Kind:     KindInventory,
			EventID:  rec.EventID,
			Quantity: parts[i].Quantity,
			Section:  rec.Section,
			Row:      rec.Row,
			Seats:    seats[i],
			Notes:    rec.Notes,
			Purchase: &PurchaseDetails{
				Status:     StatusAvailable,
				Cost:       costShares[i],
				MemberID:   rec.Purchase.MemberID,
				BoughtFrom: rec.Purchase.BoughtFrom,
				VendorID:   rec.Purchase.VendorID,
			},
		}

		partTxn := &ledger.Transaction{
			ID:           uuid.New(),
			Org:          org,
			Number:       txnNumber,
			Kind:         txn.Kind,
			Amount:       *amountShares[i],
			AmountPaid:   decimal.Zero,
			AmountOwed:   *owedShares[i],
			Status:       ledger.StatusPending,
			VendorID:     txn.VendorID,
			RecordID:     &part.ID,
			RecordKind:   string(KindInventory),
			RecordStatus: string(StatusAvailable),
			Description:  txn.Description,
		}

		part.TransactionID = partTxn.ID
		newRecords = append(newRecords, part)
		newTxns = append(newTxns, partTxn)
		records = append(records, part)
	}

	w := SplitWrite{
		Org:             org,
		Original:        &first,
		ExpectStatus:    StatusAvailable,
		ExpectQuantity:  rec.Quantity,
		Parts:           newRecords,
		NewTransactions: newTxns,
		TxnID:           txn.ID,
		ExpectTxnStatus: ledger.StatusPending,
		ExpectTxnPaid:   txn.AmountPaid,
		TxnAmount:       *amountShares[0],
		TxnOwed:         *owedShares[0],
	}

	if err := s.repo.Split(ctx, w); err != nil {
		return nil, err
	}

	return records, nil
}

// splitSeats carves the original seat assignments by cumulative part
// quantity, except for parts that supplied their own.
func splitSeats(original []string, parts []SplitPart) [][]string {
	out := make([][]string, len(parts))
	offset := 0

	for i, part := range parts {
		if len(part.Seats) > 0 {
			out[i] = part.Seats
		} else {
			start := min(offset, len(original))
			end := min(offset+part.Quantity, len(original))
			if start < end {
				out[i] = original[start:end]
			}
		}

		offset += part.Quantity
	}

	return out
}
