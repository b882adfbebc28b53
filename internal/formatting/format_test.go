package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchFallsBackToRussian(t *testing.T) {
	assert.Equal(t, language.Russian, Match())
	assert.Equal(t, language.English, Match(language.BritishEnglish))
	assert.Equal(t, language.Russian, ParseAcceptLanguage("ru-RU,ru;q=0.9"))
	assert.Equal(t, language.English, ParseAcceptLanguage("en-US,en;q=0.8"))
}

func TestWeekdayAndMonthNames(t *testing.T) {
	assert.Equal(t, "Пн", WeekdayShort(time.Monday, language.Russian))
	assert.Equal(t, "Mon", WeekdayShort(time.Monday, language.English))
	assert.Equal(t, "Воскресенье", WeekdayName(time.Sunday, language.Russian))
	assert.Equal(t, "Октябрь", MonthName(time.October, language.Russian))
	assert.Equal(t, "October", MonthName(time.October, language.English))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45 мин", FormatDuration(45))
	assert.Equal(t, "2 ч", FormatDuration(120))
	assert.Equal(t, "1 ч 30 мин", FormatDuration(90))
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "7", FormatHours(7))
	assert.Equal(t, "1.5", FormatHours(1.5))
}

func TestFormatMoneyGroupsDigits(t *testing.T) {
	assert.Equal(t, "12,000 ₽", FormatMoney(1200000, language.English))
	assert.Contains(t, FormatMoney(1250, language.English), "12.50")
}

func TestPluralizeLessons(t *testing.T) {
	assert.Equal(t, "занятие", PluralizeLessons(1))
	assert.Equal(t, "занятия", PluralizeLessons(3))
	assert.Equal(t, "занятий", PluralizeLessons(11))
	assert.Equal(t, "занятие", PluralizeLessons(21))
}

func TestStatusDisplays(t *testing.T) {
	assert.Equal(t, "Отменено", LessonStatusDisplay(model.LessonStatusCancelled).Text)
	assert.Equal(t, "Неизвестно", LessonStatusDisplay("bogus").Text)
	assert.Equal(t, "Оплачено", PaymentStatusDisplay(model.PaymentStatusCompleted).Text)
}
