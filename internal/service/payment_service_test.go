package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPayments(m *memStore) *PaymentService {
	logger := zap.NewNop()
	svc := NewPaymentService(m, m, NewLedgerService(m, m, m, logger), logger)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRecordPaymentUpdatesBalance(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 12000, nil)
	svc := newTestPayments(m)
	ctx := context.Background()

	commit, err := svc.Record(ctx, PaymentInput{
		PackageID: pkg.ID,
		Amount:    3000,
		Method:    model.PaymentMethodCash,
		Plan:      model.PaymentPlanInstallment,
	})
	require.NoError(t, err)
	require.NoError(t, commit.LedgerErr)
	assert.Equal(t, model.PaymentStatusCompleted, commit.Payment.Status)
	assert.NotEqual(t, uuid.Nil, commit.Payment.Reference)
	assert.Equal(t, testNow, commit.Payment.PaidAt)
	assert.Equal(t, int64(9000), commit.Ledger.BalanceDue)

	pending, err := svc.Record(ctx, PaymentInput{
		PackageID: pkg.ID,
		Amount:    5000,
		Method:    model.PaymentMethodTransfer,
		Plan:      model.PaymentPlanInstallment,
		Status:    model.PaymentStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), pending.Ledger.TotalPaid)

	failed, err := svc.Record(ctx, PaymentInput{
		PackageID: pkg.ID,
		Amount:    9000,
		Method:    model.PaymentMethodCard,
		Plan:      model.PaymentPlanFull,
		Status:    model.PaymentStatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), failed.Ledger.TotalPaid, "failed payments are not counted")

	completed, err := svc.SetStatus(ctx, pending.Payment.ID, model.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), completed.Ledger.TotalPaid)
	assert.Equal(t, int64(4000), completed.Ledger.BalanceDue)

	list, err := svc.List(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRecordPaymentValidation(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 12000, nil)
	svc := newTestPayments(m)

	tests := []struct {
		name  string
		in    PaymentInput
		field string
	}{
		{"zero amount", PaymentInput{PackageID: pkg.ID, Method: model.PaymentMethodCash, Plan: model.PaymentPlanFull}, "amount"},
		{"bad method", PaymentInput{PackageID: pkg.ID, Amount: 1, Method: "barter", Plan: model.PaymentPlanFull}, "method"},
		{"bad plan", PaymentInput{PackageID: pkg.ID, Amount: 1, Method: model.PaymentMethodCash, Plan: "later"}, "plan"},
		{"bad status", PaymentInput{PackageID: pkg.ID, Amount: 1, Method: model.PaymentMethodCash, Plan: model.PaymentPlanFull, Status: "lost"}, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.in)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}

	_, err := svc.Record(context.Background(), PaymentInput{PackageID: 999, Amount: 1, Method: model.PaymentMethodCash, Plan: model.PaymentPlanFull})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetStatus(context.Background(), 999, model.PaymentStatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentKeptWhenLedgerRecomputeFails(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 12000, nil)
	svc := newTestPayments(m)
	ctx := context.Background()

	m.set(func(m *memStore) { m.paymentsErr = errStoreDown })

	commit, err := svc.Record(ctx, PaymentInput{
		PackageID: pkg.ID,
		Amount:    3000,
		Method:    model.PaymentMethodCash,
		Plan:      model.PaymentPlanFull,
		Status:    model.PaymentStatusPending,
	})
	require.NoError(t, err, "payment row is saved, only the balance is missing")
	require.NotNil(t, commit.Payment)
	assert.NotZero(t, commit.Payment.ID)
	assert.Nil(t, commit.Ledger)
	assert.ErrorIs(t, commit.LedgerErr, ledger.ErrFetch)

	stored, err := m.GetPayment(ctx, commit.Payment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	updated, err := svc.SetStatus(ctx, commit.Payment.ID, model.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, updated.Payment.Status)
	assert.ErrorIs(t, updated.LedgerErr, ledger.ErrFetch)

	m.set(func(m *memStore) { m.paymentsErr = nil })
	list, err := svc.List(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
