// Package ledger считает производное состояние пакета часов: остаток часов,
// сумму оплат и долг. Значения никогда не хранятся, а пересчитываются из строк
// занятий и оплат при каждом чтении.
package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
)

// ErrFetch - не удалось загрузить занятия или оплаты пакета
var ErrFetch = errors.New("ledger fetch failed")

// FetchError сообщает о сбое загрузки исходных строк. Вызывающий не должен
// показывать нулевые значения вместо реальных.
type FetchError struct {
	PackageID int64
	Source    string // package, lessons, payments
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("ledger fetch %s for package %d: %v", e.Source, e.PackageID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Stats - проекция пакета
type Stats struct {
	PackageID       int64   `json:"package_id"`
	TotalHours      float64 `json:"total_hours"`
	ConsumedHours   float64 `json:"consumed_hours"`
	RemainingHours  float64 `json:"remaining_hours"` // может быть отрицательным при перерасходе
	LessonCount     int     `json:"lesson_count"`
	ContractPrice   int64   `json:"contract_price"`
	TotalPaid       int64   `json:"total_paid"`
	BalanceDue      int64   `json:"balance_due"`
	ProgressPercent float64 `json:"progress_percent"`

	totalMinutes    int
	consumedMinutes int
}

// Compute строит проекцию пакета по его занятиям и оплатам.
// Строки других пакетов игнорируются.
func Compute(pkg *model.Package, lessons []*model.Lesson, payments []*model.Payment) Stats {
	stats := Stats{
		PackageID:     pkg.ID,
		TotalHours:    pkg.TotalHours,
		ContractPrice: pkg.ContractPrice,
		totalMinutes:  pkg.TotalMinutes(),
	}

	for _, lesson := range lessons {
		if lesson == nil || lesson.PackageID != pkg.ID || lesson.IsCancelled() {
			continue
		}
		stats.consumedMinutes += lesson.DurationMinutes
		stats.LessonCount++
	}

	stats.TotalPaid = TotalPaid(pkg.ID, payments)
	stats.BalanceDue = pkg.ContractPrice - stats.TotalPaid

	stats.ConsumedHours = float64(stats.consumedMinutes) / 60
	stats.RemainingHours = float64(stats.totalMinutes-stats.consumedMinutes) / 60
	stats.ProgressPercent = progress(stats.totalMinutes, stats.consumedMinutes)

	return stats
}

// TotalPaid суммирует только завершённые оплаты пакета
func TotalPaid(packageID int64, payments []*model.Payment) int64 {
	var total int64
	for _, payment := range payments {
		if payment == nil || payment.PackageID != packageID || !payment.IsCompleted() {
			continue
		}
		total += payment.Amount
	}
	return total
}

func progress(totalMinutes, consumedMinutes int) float64 {
	if totalMinutes == 0 {
		return 0
	}
	pct := float64(consumedMinutes) / float64(totalMinutes) * 100
	return math.Max(0, math.Min(100, pct))
}

// RemainingMinutes возвращает остаток в минутах
func (s Stats) RemainingMinutes() int {
	return s.totalMinutes - s.consumedMinutes
}

// IsOver проверяет перерасход часов
func (s Stats) IsOver() bool {
	return s.RemainingMinutes() < 0
}

// IsPaidOff проверяет что долга нет
func (s Stats) IsPaidOff() bool {
	return s.BalanceDue <= 0
}

// HoursLabel возвращает "7 ч осталось" или "2 ч сверх пакета"
func (s Stats) HoursLabel() string {
	if s.IsOver() {
		return fmt.Sprintf("%s ч сверх пакета", formatHours(-s.RemainingHours))
	}
	return fmt.Sprintf("%s ч осталось", formatHours(s.RemainingHours))
}

func formatHours(h float64) string {
	if h == math.Trunc(h) {
		return fmt.Sprintf("%.0f", h)
	}
	return fmt.Sprintf("%.1f", h)
}

// OverageWarning - мягкое нарушение: занятие выводит пакет за контрактный объём
type OverageWarning struct {
	PackageID     int64   `json:"package_id"`
	TotalHours    float64 `json:"total_hours"`
	ConsumedHours float64 `json:"consumed_hours"` // с учётом нового занятия
	OverageHours  float64 `json:"overage_hours"`
}

func (w *OverageWarning) String() string {
	return fmt.Sprintf("package %d: %.1f of %.1f hours used (%.1f over)",
		w.PackageID, w.ConsumedHours, w.TotalHours, w.OverageHours)
}

// CheckOverage возвращает предупреждение, если дополнительные минуты выведут
// потребление за контрактный объём. Ничего не блокирует.
func CheckOverage(stats Stats, additionalMinutes int) *OverageWarning {
	consumed := stats.consumedMinutes + additionalMinutes
	if consumed <= stats.totalMinutes {
		return nil
	}
	return &OverageWarning{
		PackageID:     stats.PackageID,
		TotalHours:    float64(stats.totalMinutes) / 60,
		ConsumedHours: float64(consumed) / 60,
		OverageHours:  float64(consumed-stats.totalMinutes) / 60,
	}
}
