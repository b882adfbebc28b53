package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

var wednesday = time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)

func testLessons() []*model.Lesson {
	return []*model.Lesson{
		{ID: 1, PackageID: 7, InstructorID: 3, SessionDate: wednesday.Add(9 * time.Hour), DurationMinutes: 90, Status: model.LessonStatusCompleted, Location: "Автодром"},
		{ID: 2, PackageID: 8, InstructorID: 3, SessionDate: wednesday.Add(14 * time.Hour), DurationMinutes: 60, Status: model.LessonStatusCancelled},
		{ID: 3, PackageID: 7, InstructorID: 3, SessionDate: wednesday.Add(16 * time.Hour), DurationMinutes: 120, Status: model.LessonStatusPlanned},
	}
}

func TestDayText(t *testing.T) {
	text := dayText(service.ViewDay, wednesday, testLessons(), map[int64]string{7: "Иванов Пётр"}, language.Russian)

	assert.Contains(t, text, "14.10.2026")
	assert.Contains(t, text, "✅ 09:00-10:30  Иванов Пётр · #1")
	assert.Contains(t, text, "📍 Автодром")
	assert.Contains(t, text, "❌ 14:00-15:00  Пакет #8 · #2")
	// отменённое занятие не входит в итог
	assert.Contains(t, text, "Итого: 2 занятия, 3 ч 30 мин")
}

func TestDayTextEmptyToday(t *testing.T) {
	text := dayText(service.ViewToday, wednesday, nil, nil, language.Russian)

	assert.Contains(t, text, "📍 Сегодня,")
	assert.Contains(t, text, "Занятий нет")
	assert.NotContains(t, text, "Итого")
}

func TestWeekTextGroupsByDay(t *testing.T) {
	monday := wednesday.AddDate(0, 0, -2)
	lessons := append(testLessons(), &model.Lesson{
		ID: 4, PackageID: 7, SessionDate: monday.AddDate(0, 0, 4).Add(10 * time.Hour), DurationMinutes: 60, Status: model.LessonStatusPlanned,
	})

	text := weekText(monday, lessons, nil, language.Russian)

	assert.Contains(t, text, "🗓 Неделя 12.10 - 18.10.2026")
	assert.Contains(t, text, "14.10\n")
	assert.Contains(t, text, "16.10\n")
	assert.Contains(t, text, "Итого: 3 занятия, 4 ч 30 мин")
}

func TestWeekCaptionEmpty(t *testing.T) {
	monday := wednesday.AddDate(0, 0, -2)
	assert.Equal(t, "🗓 Неделя 12.10 - 18.10.2026\nЗанятий нет", weekCaption(monday, nil))
}

func testPackage() *model.Package {
	return &model.Package{ID: 7, ClientID: 5, TotalHours: 10, ContractPrice: 1200000, Status: model.PackageStatusActive}
}

func TestLedgerText(t *testing.T) {
	pkg := testPackage()
	var lessons []*model.Lesson
	for i := 0; i < 8; i++ {
		lessons = append(lessons, &model.Lesson{ID: int64(i + 1), PackageID: 7, DurationMinutes: 90, Status: model.LessonStatusCompleted})
	}
	payments := []*model.Payment{{ID: 1, PackageID: 7, Amount: 1200000, Status: model.PaymentStatusCompleted}}
	stats := ledger.Compute(pkg, lessons, payments)
	warning := &ledger.OverageWarning{PackageID: 7, TotalHours: 10, ConsumedHours: 12, OverageHours: 2}

	text := ledgerText(&stats, warning, language.Russian)

	assert.Contains(t, text, "Пакет #7")
	assert.Contains(t, text, "2 ч сверх пакета (12 из 10 ч, 100%)")
	assert.Contains(t, text, "8 занятий")
	assert.Contains(t, text, "Оплачен полностью")
	assert.Contains(t, text, "Превышен пакет на 2 ч")
}

func TestLedgerTextBalanceDue(t *testing.T) {
	lessons := []*model.Lesson{{ID: 1, PackageID: 7, DurationMinutes: 180, Status: model.LessonStatusCompleted}}
	stats := ledger.Compute(testPackage(), lessons, nil)

	text := ledgerText(&stats, nil, language.Russian)

	assert.Contains(t, text, "7 ч осталось")
	assert.Contains(t, text, "К оплате")
	assert.NotContains(t, text, "Превышен")
}

func TestCommitText(t *testing.T) {
	lesson := testLessons()[2]

	t.Run("with ledger", func(t *testing.T) {
		stats := ledger.Compute(testPackage(), []*model.Lesson{lesson}, nil)
		commit := &service.Commit{Lesson: lesson, Ledger: &stats}
		text := commitText("✅ Записано", commit, time.UTC, language.Russian)

		assert.Contains(t, text, "🗓 #3: 14.10.2026 16:00-18:00, Запланировано")
		assert.Contains(t, text, "8 ч осталось (2 из 10 ч, 20%)")
	})

	t.Run("ledger failed", func(t *testing.T) {
		commit := &service.Commit{
			Lesson:    lesson,
			LedgerErr: &ledger.FetchError{PackageID: 7, Err: errors.New("timeout")},
		}
		text := commitText("✅ Записано", commit, time.UTC, language.Russian)

		assert.Contains(t, text, "баланс не пересчитан")
		assert.NotContains(t, text, "осталось")
	})
}

func TestClientText(t *testing.T) {
	client := &model.Client{ID: 5, FullName: "Иванов Пётр", Phone: "+79990001122", Gear: model.GearAutomatic}
	packages := []*model.Package{
		{ID: 7, ClientID: 5, TotalHours: 10, Status: model.PackageStatusActive},
		{ID: 9, ClientID: 5, TotalHours: 2.5, Status: model.PackageStatusArchived},
	}

	text := clientText(client, packages)

	assert.Contains(t, text, "👤 Иванов Пётр")
	assert.Contains(t, text, "📞 +79990001122")
	assert.NotContains(t, text, "✉️")
	assert.Contains(t, text, "Коробка: автомат")
	assert.Contains(t, text, "🚫 Неактивен")
	assert.Contains(t, text, "• #7: 10 ч, активен")
	assert.Contains(t, text, "• #9: 2.5 ч, в архиве")
}
