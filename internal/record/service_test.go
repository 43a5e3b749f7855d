package record_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stubdesk/backoffice/internal/counterparty"
	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
	"github.com/stubdesk/backoffice/internal/record"
	"github.com/stubdesk/backoffice/internal/sequence"
)

const testOrg = "org-1"

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }

type mocks struct {
	repo       *record.MockRepository
	ledgerRepo *ledger.MockRepository
	seq        *sequence.MockRepository
	lookup     *counterparty.MockLookup
	balances   *counterparty.MockBalances
}

func newService(t *testing.T) (*record.Service, *mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := &mocks{
		repo:       record.NewMockRepository(ctrl),
		ledgerRepo: ledger.NewMockRepository(ctrl),
		seq:        sequence.NewMockRepository(ctrl),
		lookup:     counterparty.NewMockLookup(ctrl),
		balances:   counterparty.NewMockBalances(ctrl),
	}

	seqSvc := sequence.NewService(m.seq)
	ledgerSvc := ledger.NewService(m.ledgerRepo, seqSvc, m.lookup, m.balances)
	svc := record.NewService(m.repo, seqSvc, m.lookup, ledgerSvc)

	return svc, m
}

func availableLot(vendorID *uuid.UUID) *record.Record {
	return &record.Record{
		ID:            uuid.New(),
		Org:           testOrg,
		Number:        10,
		Kind:          record.KindInventory,
		Quantity:      5,
		Section:       "104",
		Row:           "C",
		Seats:         []string{"1", "2", "3", "4", "5"},
		TransactionID: uuid.New(),
		Purchase: &record.PurchaseDetails{
			Status:   record.StatusAvailable,
			Cost:     ptr(money("500.00")),
			VendorID: vendorID,
		},
	}
}

func unfulfilledOrder(vendorID *uuid.UUID) *record.Record {
	return &record.Record{
		ID:            uuid.New(),
		Org:           testOrg,
		Number:        20,
		Kind:          record.KindOrder,
		Quantity:      5,
		Section:       "104",
		Row:           "C",
		TransactionID: uuid.New(),
		Order: &record.OrderDetails{
			Status:      record.StatusUnfulfilled,
			Selling:     ptr(money("750.00")),
			OrderNumber: "ORD-881",
			SoldTo:      "resale exchange",
			VendorID:    vendorID,
		},
	}
}

func TestService_CreatePurchase(t *testing.T) {
	vendorID := uuid.New()

	type testCase struct {
		name      string
		params    record.CreatePurchaseParams
		setupMock func(m *mocks)
		wantErr   error
		check     func(t *testing.T, got *record.Record)
	}

	tests := []testCase{
		{
			name: "Success",
			params: record.CreatePurchaseParams{
				Quantity: 4,
				Section:  "112",
				Row:      "F",
				Seats:    []string{"7", "8"},
				Cost:     ptr(money("480.00")),
				VendorID: &vendorID,
			},
			setupMock: func(m *mocks) {
				m.lookup.EXPECT().
					GetVendor(gomock.Any(), testOrg, vendorID).
					Return(&counterparty.Vendor{ID: vendorID, Org: testOrg}, nil)
				m.seq.EXPECT().
					Increment(gomock.Any(), testOrg, sequence.KindPurchase).
					Return(int64(11), nil)
				m.seq.EXPECT().
					Increment(gomock.Any(), testOrg, sequence.KindTransaction).
					Return(int64(42), nil)
				m.repo.EXPECT().
					CreateWithTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, rec *record.Record, txn *ledger.Transaction) error {
						assert.Equal(t, rec.TransactionID, txn.ID)
						assert.Equal(t, int64(42), txn.Number)
						assert.Equal(t, ledger.KindPurchase, txn.Kind)
						assert.Equal(t, ledger.StatusPending, txn.Status)
						assert.True(t, txn.Amount.Equal(money("480.00")))
						assert.True(t, txn.AmountOwed.Equal(money("480.00")))
						assert.True(t, txn.AmountPaid.IsZero())
						require.NotNil(t, txn.RecordID)
						assert.Equal(t, rec.ID, *txn.RecordID)
						assert.Equal(t, "inventory", txn.RecordKind)
						assert.Equal(t, "available", txn.RecordStatus)
						return nil
					})
			},
			check: func(t *testing.T, got *record.Record) {
				assert.Equal(t, int64(11), got.Number)
				assert.Equal(t, record.KindInventory, got.Kind)
				assert.Equal(t, record.StatusAvailable, got.Status())
			},
		},
		{
			name:    "ZeroQuantity",
			params:  record.CreatePurchaseParams{Quantity: 0},
			wantErr: fault.ErrValidation,
		},
		{
			name: "TooManySeats",
			params: record.CreatePurchaseParams{
				Quantity: 2,
				Seats:    []string{"1", "2", "3"},
			},
			wantErr: fault.ErrValidation,
		},
		{
			name: "NegativeCost",
			params: record.CreatePurchaseParams{
				Quantity: 2,
				Cost:     ptr(money("-1")),
			},
			wantErr: fault.ErrValidation,
		},
		{
			name: "UnknownVendor",
			params: record.CreatePurchaseParams{
				Quantity: 2,
				VendorID: &vendorID,
			},
			setupMock: func(m *mocks) {
				m.lookup.EXPECT().
					GetVendor(gomock.Any(), testOrg, vendorID).
					Return(nil, fault.NotFoundf("vendor %s", vendorID))
			},
			wantErr: fault.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			got, err := svc.CreatePurchase(context.Background(), testOrg, tt.params)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_CreateOrder(t *testing.T) {
	svc, m := newService(t)

	m.seq.EXPECT().
		Increment(gomock.Any(), testOrg, sequence.KindOrder).
		Return(int64(3), nil)
	m.seq.EXPECT().
		Increment(gomock.Any(), testOrg, sequence.KindTransaction).
		Return(int64(9), nil)
	m.repo.EXPECT().
		CreateWithTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *record.Record, txn *ledger.Transaction) error {
			assert.Equal(t, ledger.KindOrder, txn.Kind)
			assert.Equal(t, "order", txn.RecordKind)
			assert.Equal(t, "unfulfilled", txn.RecordStatus)
			assert.True(t, txn.Amount.Equal(money("750.00")))
			return nil
		})

	got, err := svc.CreateOrder(context.Background(), testOrg, record.CreateOrderParams{
		Quantity:    5,
		Section:     "104",
		Selling:     ptr(money("750.00")),
		OrderNumber: "ORD-881",
	})
	require.NoError(t, err)
	assert.Equal(t, record.KindOrder, got.Kind)
	assert.Equal(t, record.StatusUnfulfilled, got.Status())
	assert.Equal(t, "ORD-881", got.Order.OrderNumber)
}

func TestService_Update_FieldClassRules(t *testing.T) {
	type testCase struct {
		name    string
		rec     func() *record.Record
		params  record.UpdateParams
		wantErr error
	}

	tests := []testCase{
		{
			name: "SaleNeverEditable",
			rec: func() *record.Record {
				return &record.Record{
					ID:   uuid.New(),
					Org:  testOrg,
					Kind: record.KindSale,
					Sale: &record.SaleDetails{Status: record.StatusReserved},
				}
			},
			params:  record.UpdateParams{Notes: ptr("updated")},
			wantErr: fault.ErrBusinessRule,
		},
		{
			name:    "OrderFieldsRejectedOnInventory",
			rec:     func() *record.Record { return availableLot(nil) },
			params:  record.UpdateParams{SoldTo: ptr("someone")},
			wantErr: fault.ErrBusinessRule,
		},
		{
			name:    "PurchaseFieldsRejectedOnOrder",
			rec:     func() *record.Record { return unfulfilledOrder(nil) },
			params:  record.UpdateParams{Cost: ptr(money("10"))},
			wantErr: fault.ErrBusinessRule,
		},
		{
			name: "TerminalStatusRejectsEdits",
			rec: func() *record.Record {
				rec := availableLot(nil)
				rec.Purchase.Status = record.StatusClosed
				return rec
			},
			params:  record.UpdateParams{Notes: ptr("updated")},
			wantErr: fault.ErrBusinessRule,
		},
		{
			name: "StructuralEditFixedWhileReserved",
			rec: func() *record.Record {
				rec := availableLot(nil)
				rec.Purchase.Status = record.StatusReserved
				return rec
			},
			params:  record.UpdateParams{Quantity: ptr(3)},
			wantErr: fault.ErrBusinessRule,
		},
		{
			name:    "StatusChangeCannotCombineWithEdits",
			rec:     func() *record.Record { return unfulfilledOrder(nil) },
			params:  record.UpdateParams{Status: ptr(record.StatusCancelled), Notes: ptr("bye")},
			wantErr: fault.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			rec := tt.rec()
			m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)

			_, err := svc.Update(context.Background(), testOrg, rec.ID, tt.params)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Update_Fields(t *testing.T) {
	t.Run("DescriptiveEdit", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.repo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.UpdateWrite) error {
				assert.Equal(t, record.StatusAvailable, w.ExpectStatus)
				assert.Equal(t, "201", w.Record.Section)
				assert.Nil(t, w.Txn)
				return nil
			})

		got, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Section: ptr("201"),
		})
		require.NoError(t, err)
		assert.Equal(t, "201", got.Section)
		// The loaded copy is not mutated in place.
		assert.Equal(t, "104", rec.Section)
	})

	t.Run("CostEditPatchesPendingTransaction", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.ledgerRepo.EXPECT().
			Get(gomock.Any(), testOrg, rec.TransactionID).
			Return(&ledger.Transaction{
				ID:     rec.TransactionID,
				Org:    testOrg,
				Status: ledger.StatusPending,
				Amount: money("500.00"),
			}, nil)
		m.repo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.UpdateWrite) error {
				require.NotNil(t, w.Txn)
				assert.True(t, w.Txn.SetAmount)
				assert.True(t, w.Txn.Amount.Equal(money("450.00")))
				assert.True(t, w.Txn.AmountOwed.Equal(money("450.00")))
				assert.Equal(t, ledger.StatusPending, w.Txn.ExpectStatus)
				return nil
			})

		got, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Cost: ptr(money("450.00")),
		})
		require.NoError(t, err)
		assert.True(t, got.Purchase.Cost.Equal(money("450.00")))
	})

	t.Run("CostEditRejectedAfterSettlementActivity", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.ledgerRepo.EXPECT().
			Get(gomock.Any(), testOrg, rec.TransactionID).
			Return(&ledger.Transaction{
				ID:     rec.TransactionID,
				Org:    testOrg,
				Status: ledger.StatusPartial,
			}, nil)

		_, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Cost: ptr(money("450.00")),
		})
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})

	t.Run("SeatsCannotExceedQuantity", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)

		_, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Quantity: ptr(2),
		})
		require.ErrorIs(t, err, fault.ErrValidation)
	})
}

func TestService_Update_Transitions(t *testing.T) {
	t.Run("OrderCancel", func(t *testing.T) {
		svc, m := newService(t)
		rec := unfulfilledOrder(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.ledgerRepo.EXPECT().
			Get(gomock.Any(), testOrg, rec.TransactionID).
			Return(&ledger.Transaction{
				ID:         rec.TransactionID,
				Org:        testOrg,
				Status:     ledger.StatusPending,
				AmountPaid: decimal.Zero,
			}, nil)
		m.repo.EXPECT().
			Cancel(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.CancelWrite) error {
				assert.Equal(t, rec.ID, w.RecordID)
				assert.Equal(t, record.StatusUnfulfilled, w.ExpectStatus)
				assert.Equal(t, rec.TransactionID, w.TxnID)
				return nil
			})

		got, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Status: ptr(record.StatusCancelled),
		})
		require.NoError(t, err)
		assert.Equal(t, record.StatusCancelled, got.Status())
	})

	t.Run("OrderReinstate", func(t *testing.T) {
		svc, m := newService(t)
		rec := unfulfilledOrder(nil)
		rec.Order.Status = record.StatusCancelled

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.repo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.UpdateWrite) error {
				assert.Equal(t, record.StatusCancelled, w.ExpectStatus)
				require.NotNil(t, w.Txn)
				assert.Equal(t, ledger.StatusCancelled, w.Txn.ExpectStatus)
				assert.Equal(t, ledger.StatusPending, w.Txn.Status)
				assert.Equal(t, record.StatusUnfulfilled, w.Txn.RecordStatus)
				return nil
			})

		got, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Status: ptr(record.StatusUnfulfilled),
		})
		require.NoError(t, err)
		assert.Equal(t, record.StatusUnfulfilled, got.Status())
	})

	t.Run("InventoryClose", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.repo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.UpdateWrite) error {
				require.NotNil(t, w.Txn)
				assert.Equal(t, record.StatusClosed, w.Txn.RecordStatus)
				assert.False(t, w.Txn.SetAmount)
				return nil
			})

		got, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Status: ptr(record.StatusClosed),
		})
		require.NoError(t, err)
		assert.Equal(t, record.StatusClosed, got.Status())
	})

	t.Run("SameStatusIsNoop", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)

		got, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Status: ptr(record.StatusAvailable),
		})
		require.NoError(t, err)
		assert.Equal(t, record.StatusAvailable, got.Status())
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)

		_, err := svc.Update(context.Background(), testOrg, rec.ID, record.UpdateParams{
			Status: ptr(record.StatusCompleted),
		})
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("AvailableLot", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.ledgerRepo.EXPECT().
			Get(gomock.Any(), testOrg, rec.TransactionID).
			Return(&ledger.Transaction{
				ID:         rec.TransactionID,
				Org:        testOrg,
				Status:     ledger.StatusPending,
				AmountPaid: decimal.Zero,
			}, nil)
		m.repo.EXPECT().
			Cancel(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.CancelWrite) error {
				assert.Equal(t, rec.TransactionID, w.TxnID)
				assert.Equal(t, ledger.StatusPending, w.ExpectTxnStatus)
				assert.True(t, w.ExpectTxnPaid.IsZero())
				return nil
			})

		require.NoError(t, svc.Delete(context.Background(), testOrg, rec.ID))
	})

	t.Run("PartiallyPaidLotUnwindsBalances", func(t *testing.T) {
		svc, m := newService(t)
		vendorID := uuid.New()
		bankID := uuid.New()
		rec := availableLot(&vendorID)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.ledgerRepo.EXPECT().
			Get(gomock.Any(), testOrg, rec.TransactionID).
			Return(&ledger.Transaction{
				ID:            rec.TransactionID,
				Org:           testOrg,
				Kind:          ledger.KindPurchase,
				Status:        ledger.StatusPartial,
				Amount:        money("500"),
				AmountPaid:    money("200"),
				AmountOwed:    money("300"),
				VendorID:      &vendorID,
				BankAccountID: &bankID,
			}, nil)
		m.repo.EXPECT().Cancel(gomock.Any(), gomock.Any()).Return(nil)
		m.balances.EXPECT().
			AdjustVendorBalance(gomock.Any(), testOrg, vendorID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ uuid.UUID, delta decimal.Decimal) error {
				assert.True(t, delta.Equal(money("-200")))
				return nil
			})
		m.balances.EXPECT().
			AdjustBankBalance(gomock.Any(), testOrg, bankID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ uuid.UUID, delta decimal.Decimal) error {
				assert.True(t, delta.Equal(money("200")))
				return nil
			})

		require.NoError(t, svc.Delete(context.Background(), testOrg, rec.ID))
	})

	t.Run("ReservedLotRejected", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)
		rec.Purchase.Status = record.StatusReserved

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)

		err := svc.Delete(context.Background(), testOrg, rec.ID)
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})

	t.Run("SaleRejected", func(t *testing.T) {
		svc, m := newService(t)
		rec := &record.Record{
			ID:   uuid.New(),
			Org:  testOrg,
			Kind: record.KindSale,
			Sale: &record.SaleDetails{Status: record.StatusReserved},
		}

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)

		err := svc.Delete(context.Background(), testOrg, rec.ID)
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})
}

func TestService_Assign(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, m := newService(t)
		vendorID := uuid.New()
		inv := availableLot(nil)
		ord := unfulfilledOrder(&vendorID)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, inv.ID).Return(inv, nil)
		m.repo.EXPECT().Get(gomock.Any(), testOrg, ord.ID).Return(ord, nil)
		m.seq.EXPECT().
			Increment(gomock.Any(), testOrg, sequence.KindSale).
			Return(int64(5), nil)
		m.repo.EXPECT().
			Assign(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.AssignWrite) error {
				assert.Equal(t, inv.ID, w.InventoryID)
				assert.Equal(t, ord.ID, w.OrderID)
				assert.Equal(t, inv.TransactionID, w.InventoryTxnID)
				assert.Equal(t, ord.TransactionID, w.OrderTxnID)
				return nil
			})

		sale, err := svc.Assign(context.Background(), testOrg, inv.ID, ord.ID)
		require.NoError(t, err)
		assert.Equal(t, record.KindSale, sale.Kind)
		assert.Equal(t, record.StatusReserved, sale.Status())
		assert.Equal(t, int64(5), sale.Number)
		// The sale carries the order's transaction, the lot's cost and the
		// order's commercial terms.
		assert.Equal(t, ord.TransactionID, sale.TransactionID)
		assert.True(t, sale.Sale.Cost.Equal(money("500.00")))
		assert.True(t, sale.Sale.Selling.Equal(money("750.00")))
		assert.Equal(t, "resale exchange", sale.Sale.SoldTo)
		assert.Equal(t, inv.ID, sale.Sale.SourceInventoryID)
		assert.Equal(t, ord.ID, sale.Sale.SourceOrderID)
		// Seats fall back to the lot's assignments since the order has none.
		assert.Equal(t, inv.Seats, sale.Seats)
	})

	t.Run("QuantityMismatch", func(t *testing.T) {
		svc, m := newService(t)
		inv := availableLot(nil)
		ord := unfulfilledOrder(nil)
		ord.Quantity = 3

		m.repo.EXPECT().Get(gomock.Any(), testOrg, inv.ID).Return(inv, nil)
		m.repo.EXPECT().Get(gomock.Any(), testOrg, ord.ID).Return(ord, nil)

		_, err := svc.Assign(context.Background(), testOrg, inv.ID, ord.ID)
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})

	t.Run("ReservedLotRejected", func(t *testing.T) {
		svc, m := newService(t)
		inv := availableLot(nil)
		inv.Purchase.Status = record.StatusReserved
		ord := unfulfilledOrder(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, inv.ID).Return(inv, nil)
		m.repo.EXPECT().Get(gomock.Any(), testOrg, ord.ID).Return(ord, nil)

		_, err := svc.Assign(context.Background(), testOrg, inv.ID, ord.ID)
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})

	t.Run("TwoLotsRejected", func(t *testing.T) {
		svc, m := newService(t)
		inv := availableLot(nil)
		other := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, inv.ID).Return(inv, nil)
		m.repo.EXPECT().Get(gomock.Any(), testOrg, other.ID).Return(other, nil)

		_, err := svc.Assign(context.Background(), testOrg, inv.ID, other.ID)
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})
}

func TestService_Split(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.ledgerRepo.EXPECT().
			Get(gomock.Any(), testOrg, rec.TransactionID).
			Return(&ledger.Transaction{
				ID:         rec.TransactionID,
				Org:        testOrg,
				Kind:       ledger.KindPurchase,
				Status:     ledger.StatusPending,
				Amount:     money("500.00"),
				AmountPaid: decimal.Zero,
				AmountOwed: money("500.00"),
			}, nil)
		m.seq.EXPECT().
			Increment(gomock.Any(), testOrg, sequence.KindPurchase).
			Return(int64(11), nil)
		m.seq.EXPECT().
			Increment(gomock.Any(), testOrg, sequence.KindTransaction).
			Return(int64(43), nil)
		m.repo.EXPECT().
			Split(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.SplitWrite) error {
				assert.Equal(t, record.StatusAvailable, w.ExpectStatus)
				assert.Equal(t, 5, w.ExpectQuantity)
				assert.Equal(t, ledger.StatusPending, w.ExpectTxnStatus)
				assert.True(t, w.TxnAmount.Equal(money("200.00")))
				assert.True(t, w.TxnOwed.Equal(money("200.00")))
				require.Len(t, w.Parts, 1)
				require.Len(t, w.NewTransactions, 1)
				assert.True(t, w.NewTransactions[0].Amount.Equal(money("300.00")))
				return nil
			})

		parts, err := svc.Split(context.Background(), testOrg, rec.ID, []record.SplitPart{
			{Quantity: 2},
			{Quantity: 3},
		})
		require.NoError(t, err)
		require.Len(t, parts, 2)

		// First part keeps the original identities and sheds its notes.
		assert.Equal(t, rec.ID, parts[0].ID)
		assert.Equal(t, rec.TransactionID, parts[0].TransactionID)
		assert.Equal(t, 2, parts[0].Quantity)
		assert.True(t, parts[0].Purchase.Cost.Equal(money("200.00")))
		assert.Empty(t, parts[0].Notes)
		assert.Equal(t, []string{"1", "2"}, parts[0].Seats)

		assert.NotEqual(t, rec.ID, parts[1].ID)
		assert.Equal(t, int64(11), parts[1].Number)
		assert.Equal(t, 3, parts[1].Quantity)
		assert.True(t, parts[1].Purchase.Cost.Equal(money("300.00")))
		assert.Equal(t, []string{"3", "4", "5"}, parts[1].Seats)
	})

	t.Run("SinglePartRejected", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Split(context.Background(), testOrg, uuid.New(), []record.SplitPart{
			{Quantity: 5},
		})
		require.ErrorIs(t, err, fault.ErrValidation)
	})

	t.Run("QuantitySumMismatch", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)

		_, err := svc.Split(context.Background(), testOrg, rec.ID, []record.SplitPart{
			{Quantity: 2},
			{Quantity: 2},
		})
		require.ErrorIs(t, err, fault.ErrValidation)
	})

	t.Run("SettledTransactionRejected", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)
		m.ledgerRepo.EXPECT().
			Get(gomock.Any(), testOrg, rec.TransactionID).
			Return(&ledger.Transaction{
				ID:         rec.TransactionID,
				Org:        testOrg,
				Status:     ledger.StatusPartial,
				AmountPaid: money("100"),
			}, nil)

		_, err := svc.Split(context.Background(), testOrg, rec.ID, []record.SplitPart{
			{Quantity: 2},
			{Quantity: 3},
		})
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})

	t.Run("SingleSeatLotRejected", func(t *testing.T) {
		svc, m := newService(t)
		rec := availableLot(nil)
		rec.Quantity = 1
		rec.Seats = []string{"1"}

		m.repo.EXPECT().Get(gomock.Any(), testOrg, rec.ID).Return(rec, nil)

		_, err := svc.Split(context.Background(), testOrg, rec.ID, []record.SplitPart{
			{Quantity: 1},
			{Quantity: 1},
		})
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})
}

func TestService_UnassignComplete(t *testing.T) {
	newTriple := func() (sale, inv, ord *record.Record) {
		inv = availableLot(nil)
		inv.Purchase.Status = record.StatusReserved
		ord = unfulfilledOrder(nil)
		ord.Order.Status = record.StatusReserved

		sale = &record.Record{
			ID:            uuid.New(),
			Org:           testOrg,
			Number:        30,
			Kind:          record.KindSale,
			Quantity:      5,
			TransactionID: ord.TransactionID,
			Sale: &record.SaleDetails{
				Status:            record.StatusReserved,
				SourceInventoryID: inv.ID,
				SourceOrderID:     ord.ID,
			},
		}
		inv.Purchase.SaleID = &sale.ID
		ord.Order.SaleID = &sale.ID

		return sale, inv, ord
	}

	t.Run("Unassign", func(t *testing.T) {
		svc, m := newService(t)
		sale, inv, ord := newTriple()

		m.repo.EXPECT().Get(gomock.Any(), testOrg, sale.ID).Return(sale, nil)
		m.repo.EXPECT().Get(gomock.Any(), testOrg, inv.ID).Return(inv, nil)
		m.repo.EXPECT().Get(gomock.Any(), testOrg, ord.ID).Return(ord, nil)
		m.repo.EXPECT().
			Unassign(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w record.UnassignWrite) error {
				assert.Equal(t, sale.ID, w.SaleID)
				assert.Equal(t, inv.ID, w.InventoryID)
				assert.Equal(t, ord.ID, w.OrderID)
				return nil
			})

		require.NoError(t, svc.Unassign(context.Background(), testOrg, sale.ID))
	})

	t.Run("Complete", func(t *testing.T) {
		svc, m := newService(t)
		sale, inv, ord := newTriple()

		m.repo.EXPECT().Get(gomock.Any(), testOrg, sale.ID).Return(sale, nil)
		m.repo.EXPECT().Get(gomock.Any(), testOrg, inv.ID).Return(inv, nil)
		m.repo.EXPECT().Get(gomock.Any(), testOrg, ord.ID).Return(ord, nil)
		m.repo.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, svc.Complete(context.Background(), testOrg, sale.ID))
	})

	t.Run("CompletedSaleRejected", func(t *testing.T) {
		svc, m := newService(t)
		sale, _, _ := newTriple()
		sale.Sale.Status = record.StatusCompleted

		m.repo.EXPECT().Get(gomock.Any(), testOrg, sale.ID).Return(sale, nil)

		err := svc.Complete(context.Background(), testOrg, sale.ID)
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})

	t.Run("NotASale", func(t *testing.T) {
		svc, m := newService(t)
		inv := availableLot(nil)

		m.repo.EXPECT().Get(gomock.Any(), testOrg, inv.ID).Return(inv, nil)

		err := svc.Unassign(context.Background(), testOrg, inv.ID)
		require.ErrorIs(t, err, fault.ErrBusinessRule)
	})
}
