package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkg(totalHours float64, price int64) *model.Package {
	return &model.Package{ID: 1, TotalHours: totalHours, ContractPrice: price, Status: model.PackageStatusActive}
}

func lesson(id int64, minutes int, status model.LessonStatus) *model.Lesson {
	return &model.Lesson{
		ID:              id,
		PackageID:       1,
		InstructorID:    7,
		SessionDate:     time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC),
		DurationMinutes: minutes,
		Status:          status,
	}
}

func payment(amount int64, status model.PaymentStatus) *model.Payment {
	return &model.Payment{PackageID: 1, Amount: amount, Status: status}
}

func TestComputeRemainingAndProgress(t *testing.T) {
	stats := Compute(pkg(10, 0), []*model.Lesson{lesson(1, 180, model.LessonStatusPlanned)}, nil)

	assert.InDelta(t, 7, stats.RemainingHours, 1e-9)
	assert.InDelta(t, 30, stats.ProgressPercent, 1e-9)
	assert.Equal(t, 1, stats.LessonCount)
}

func TestComputeIgnoresCancelledAndForeignLessons(t *testing.T) {
	foreign := lesson(3, 120, model.LessonStatusCompleted)
	foreign.PackageID = 2

	stats := Compute(pkg(10, 0), []*model.Lesson{
		lesson(1, 90, model.LessonStatusCompleted),
		lesson(2, 240, model.LessonStatusCancelled),
		foreign,
		nil,
	}, nil)

	assert.InDelta(t, 8.5, stats.RemainingHours, 1e-9)
	assert.InDelta(t, 1.5, stats.ConsumedHours, 1e-9)
}

func TestComputeConservation(t *testing.T) {
	lessons := []*model.Lesson{
		lesson(1, 60, model.LessonStatusCompleted),
		lesson(2, 90, model.LessonStatusPlanned),
		lesson(3, 150, model.LessonStatusPlanned),
		lesson(4, 240, model.LessonStatusCancelled),
		lesson(5, 240, model.LessonStatusCompleted),
	}
	for _, total := range []float64{0, 1.5, 10, 56} {
		stats := Compute(pkg(total, 0), lessons, nil)

		var consumed float64
		for _, l := range lessons {
			if !l.IsCancelled() {
				consumed += l.Hours()
			}
		}
		assert.InDelta(t, total, stats.RemainingHours+consumed, 1e-9, "total=%v", total)
	}
}

func TestComputeOverageIsNotClamped(t *testing.T) {
	stats := Compute(pkg(2, 0), []*model.Lesson{
		lesson(1, 120, model.LessonStatusCompleted),
		lesson(2, 120, model.LessonStatusCompleted),
	}, nil)

	assert.InDelta(t, -2, stats.RemainingHours, 1e-9)
	assert.InDelta(t, 100, stats.ProgressPercent, 1e-9)
	assert.True(t, stats.IsOver())
	assert.Equal(t, "2 ч сверх пакета", stats.HoursLabel())
}

func TestComputeZeroTotalHoursHasZeroProgress(t *testing.T) {
	stats := Compute(pkg(0, 0), []*model.Lesson{lesson(1, 60, model.LessonStatusPlanned)}, nil)

	assert.Zero(t, stats.ProgressPercent)
	assert.InDelta(t, -1, stats.RemainingHours, 1e-9)
}

func TestComputePayments(t *testing.T) {
	payments := []*model.Payment{
		payment(300000, model.PaymentStatusCompleted),
		payment(500000, model.PaymentStatusPending),
	}

	stats := Compute(pkg(10, 1200000), nil, payments)

	assert.Equal(t, int64(300000), stats.TotalPaid)
	assert.Equal(t, int64(900000), stats.BalanceDue)
	assert.False(t, stats.IsPaidOff())
}

func TestTotalPaidIdempotentAndIgnoresFailed(t *testing.T) {
	payments := []*model.Payment{
		payment(100000, model.PaymentStatusCompleted),
		payment(250000, model.PaymentStatusCompleted),
	}

	first := TotalPaid(1, payments)
	second := TotalPaid(1, payments)
	assert.Equal(t, first, second)

	withFailed := append(payments, payment(999999, model.PaymentStatusFailed))
	assert.Equal(t, first, TotalPaid(1, withFailed))
}

func TestCheckOverage(t *testing.T) {
	stats := Compute(pkg(10, 0), []*model.Lesson{lesson(1, 480, model.LessonStatusCompleted)}, nil)

	assert.Nil(t, CheckOverage(stats, 120), "exactly reaching the contract is not an overage")

	warning := CheckOverage(stats, 180)
	require.NotNil(t, warning)
	assert.InDelta(t, 1, warning.OverageHours, 1e-9)
	assert.InDelta(t, 11, warning.ConsumedHours, 1e-9)
	assert.Contains(t, warning.String(), "1.0 over")
}

func TestFetchErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&FetchError{PackageID: 4, Source: "payments", Err: cause})

	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "payments")
}
