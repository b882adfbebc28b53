package formatting

import (
	"fmt"
	"math"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTime форматирует только время
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// FormatHours форматирует часы: 7 -> "7", 1.5 -> "1.5"
func FormatHours(hours float64) string {
	if hours == math.Trunc(hours) {
		return fmt.Sprintf("%.0f", hours)
	}
	return fmt.Sprintf("%.1f", hours)
}

// FormatMoney форматирует сумму из копеек с разделителями разрядов языка
func FormatMoney(amount int64, tag language.Tag) string {
	p := message.NewPrinter(Match(tag))
	if amount%100 == 0 {
		return p.Sprintf("%d ₽", amount/100)
	}
	return p.Sprintf("%.2f ₽", float64(amount)/100)
}

// StatusDisplay - emoji и текст статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// LessonStatusDisplay возвращает emoji и текст для статуса занятия
func LessonStatusDisplay(status model.LessonStatus) StatusDisplay {
	displays := map[model.LessonStatus]StatusDisplay{
		model.LessonStatusPlanned:   {"🗓", "Запланировано"},
		model.LessonStatusCompleted: {"✅", "Проведено"},
		model.LessonStatusCancelled: {"❌", "Отменено"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// PaymentStatusDisplay возвращает emoji и текст для статуса оплаты
func PaymentStatusDisplay(status model.PaymentStatus) StatusDisplay {
	displays := map[model.PaymentStatus]StatusDisplay{
		model.PaymentStatusCompleted: {"💰", "Оплачено"},
		model.PaymentStatusPending:   {"⏳", "Ожидает"},
		model.PaymentStatusFailed:    {"🚫", "Не прошла"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// PluralizeLessons возвращает правильное склонение слова "занятие"
func PluralizeLessons(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "занятие"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "занятия"
	}
	return "занятий"
}
