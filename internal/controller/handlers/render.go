package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/formatting"
	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"golang.org/x/text/language"
)

func lessonLabel(l *model.Lesson, labels map[int64]string) string {
	if name, ok := labels[l.PackageID]; ok {
		return name
	}
	return fmt.Sprintf("Пакет #%d", l.PackageID)
}

// dayText - расписание дня списком
func dayText(mode service.ViewMode, day time.Time, lessons []*model.Lesson, labels map[int64]string, locale language.Tag) string {
	var sb strings.Builder

	prefix := "📅"
	if mode == service.ViewToday {
		prefix = "📍 Сегодня,"
	}
	fmt.Fprintf(&sb, "%s %s, %s\n\n", prefix, formatting.WeekdayName(day.Weekday(), locale), formatting.FormatDate(day))

	if len(lessons) == 0 {
		sb.WriteString("Занятий нет")
		return sb.String()
	}

	for _, l := range lessons {
		writeLessonLine(&sb, l, labels, day.Location())
	}
	writeTotals(&sb, lessons)
	return sb.String()
}

// weekText - неделя списком, если картинку отрисовать не удалось
func weekText(from time.Time, lessons []*model.Lesson, labels map[int64]string, locale language.Tag) string {
	var sb strings.Builder
	sb.WriteString(weekTitle(from))
	sb.WriteString("\n")

	current := ""
	for _, l := range lessons {
		start := l.SessionDate.In(from.Location())
		day := formatting.WeekdayShort(start.Weekday(), locale) + " " + start.Format("02.01")
		if day != current {
			fmt.Fprintf(&sb, "\n%s\n", day)
			current = day
		}
		writeLessonLine(&sb, l, labels, from.Location())
	}
	if len(lessons) == 0 {
		sb.WriteString("\nЗанятий нет")
		return sb.String()
	}
	writeTotals(&sb, lessons)
	return sb.String()
}

// weekCaption - подпись к картинке недели
func weekCaption(from time.Time, lessons []*model.Lesson) string {
	var sb strings.Builder
	sb.WriteString(weekTitle(from))
	if len(lessons) == 0 {
		sb.WriteString("\nЗанятий нет")
		return sb.String()
	}
	writeTotals(&sb, lessons)
	return sb.String()
}

func weekTitle(from time.Time) string {
	to := from.AddDate(0, 0, 6)
	return fmt.Sprintf("🗓 Неделя %s - %s", from.Format("02.01"), formatting.FormatDate(to))
}

func writeLessonLine(sb *strings.Builder, l *model.Lesson, labels map[int64]string, loc *time.Location) {
	start := l.SessionDate.In(loc)
	display := formatting.LessonStatusDisplay(l.Status)
	fmt.Fprintf(sb, "%s %s  %s · #%d\n",
		display.Emoji,
		formatting.FormatTimeRange(start, start.Add(l.Duration())),
		lessonLabel(l, labels),
		l.ID,
	)
	if l.Location != "" {
		fmt.Fprintf(sb, "      📍 %s\n", l.Location)
	}
}

// writeTotals - итог без отменённых занятий
func writeTotals(sb *strings.Builder, lessons []*model.Lesson) {
	count, minutes := 0, 0
	for _, l := range lessons {
		if l.IsCancelled() {
			continue
		}
		count++
		minutes += l.DurationMinutes
	}
	fmt.Fprintf(sb, "\nИтого: %d %s, %s", count, formatting.PluralizeLessons(count), formatting.FormatDuration(minutes))
}

// ledgerText - баланс пакета
func ledgerText(stats *ledger.Stats, warning *ledger.OverageWarning, locale language.Tag) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "💼 Пакет #%d\n\n", stats.PackageID)
	fmt.Fprintf(&sb, "⏱ %s (%s из %s ч, %.0f%%)\n",
		stats.HoursLabel(),
		formatting.FormatHours(stats.ConsumedHours),
		formatting.FormatHours(stats.TotalHours),
		stats.ProgressPercent,
	)
	fmt.Fprintf(&sb, "📚 %d %s\n", stats.LessonCount, formatting.PluralizeLessons(stats.LessonCount))
	fmt.Fprintf(&sb, "💰 Оплачено: %s из %s\n",
		formatting.FormatMoney(stats.TotalPaid, locale),
		formatting.FormatMoney(stats.ContractPrice, locale),
	)
	if stats.IsPaidOff() {
		sb.WriteString("✅ Оплачен полностью")
	} else {
		fmt.Fprintf(&sb, "🧾 К оплате: %s", formatting.FormatMoney(stats.BalanceDue, locale))
	}

	if warning != nil {
		fmt.Fprintf(&sb, "\n\n⚠️ Превышен пакет на %s ч", formatting.FormatHours(warning.OverageHours))
	}
	return sb.String()
}

// commitText - результат записи занятия
func commitText(title string, commit *service.Commit, loc *time.Location, locale language.Tag) string {
	var sb strings.Builder

	l := commit.Lesson
	start := l.SessionDate.In(loc)
	display := formatting.LessonStatusDisplay(l.Status)
	fmt.Fprintf(&sb, "%s\n\n%s #%d: %s %s, %s\n",
		title,
		display.Emoji,
		l.ID,
		formatting.FormatDate(start),
		formatting.FormatTimeRange(start, start.Add(l.Duration())),
		display.Text,
	)

	switch {
	case commit.LedgerErr != nil:
		fmt.Fprintf(&sb, "\n⚠️ Занятие сохранено, но баланс не пересчитан.\n%s", service.ErrorMessage(commit.LedgerErr))
	case commit.Ledger != nil:
		sb.WriteString("\n")
		sb.WriteString(ledgerText(commit.Ledger, commit.Warning, locale))
	}
	return sb.String()
}

// clientText - карточка клиента
func clientText(client *model.Client, packages []*model.Package) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "👤 %s\n", client.FullName)
	if client.Phone != "" {
		fmt.Fprintf(&sb, "📞 %s\n", client.Phone)
	}
	if client.Email != "" {
		fmt.Fprintf(&sb, "✉️ %s\n", client.Email)
	}
	gear := "механика"
	if client.Gear == model.GearAutomatic {
		gear = "автомат"
	}
	fmt.Fprintf(&sb, "⚙️ Коробка: %s\n", gear)
	if !client.IsActive {
		sb.WriteString("🚫 Неактивен\n")
	}

	if len(packages) > 0 {
		sb.WriteString("\nПакеты:\n")
		for _, p := range packages {
			status := "активен"
			if p.IsArchived() {
				status = "в архиве"
			}
			fmt.Fprintf(&sb, "• #%d: %s ч, %s\n", p.ID, formatting.FormatHours(p.TotalHours), status)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
