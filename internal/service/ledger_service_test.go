package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLedgerServiceRecompute(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 12000, nil)
	other := seedPackage(t, m, 10, 12000, nil)
	seedLesson(t, m, pkg.ID, 7, at(13, 10, 0), 180)
	seedLesson(t, m, other.ID, 7, at(13, 14, 0), 120)
	cancelled := seedLesson(t, m, pkg.ID, 7, at(14, 10, 0), 60)
	cancelled.Status = model.LessonStatusCancelled
	require.NoError(t, m.UpdateLesson(context.Background(), cancelled))

	ctx := context.Background()
	require.NoError(t, m.CreatePayment(ctx, &model.Payment{PackageID: pkg.ID, Amount: 3000, Status: model.PaymentStatusCompleted}))
	require.NoError(t, m.CreatePayment(ctx, &model.Payment{PackageID: pkg.ID, Amount: 5000, Status: model.PaymentStatusPending}))

	stats, err := NewLedgerService(m, m, m, zap.NewNop()).Recompute(ctx, pkg.ID)
	require.NoError(t, err)

	assert.InDelta(t, 7, stats.RemainingHours, 1e-9)
	assert.InDelta(t, 30, stats.ProgressPercent, 1e-9)
	assert.Equal(t, int64(3000), stats.TotalPaid)
	assert.Equal(t, int64(9000), stats.BalanceDue)
	assert.Equal(t, 1, stats.LessonCount)
}

func TestLedgerServiceFetchFailures(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 12000, nil)
	svc := NewLedgerService(m, m, m, zap.NewNop())

	_, err := svc.Recompute(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)

	m.set(func(m *memStore) { m.listErr = errStoreDown })
	stats, err := svc.Recompute(context.Background(), pkg.ID)
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, ledger.ErrFetch)
	assert.ErrorIs(t, err, errStoreDown)

	var fetchErr *ledger.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "lessons", fetchErr.Source)
}
