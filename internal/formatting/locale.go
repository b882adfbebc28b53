// Package formatting форматирует даты, деньги и статусы для бота, API и
// картинки расписания с учётом языка сотрудника.
package formatting

import (
	"time"

	"golang.org/x/text/language"
)

var supported = []language.Tag{language.Russian, language.English}

var matcher = language.NewMatcher(supported)

// Match выбирает поддерживаемый язык. По умолчанию - русский
func Match(tags ...language.Tag) language.Tag {
	if len(tags) == 0 {
		return language.Russian
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.Russian
	}
	return supported[idx]
}

// ParseAcceptLanguage разбирает заголовок Accept-Language
func ParseAcceptLanguage(header string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return language.Russian
	}
	return Match(tags...)
}

func isEnglish(tag language.Tag) bool {
	return Match(tag) == language.English
}

var (
	weekdaysRu      = []string{"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота"}
	weekdaysShortRu = []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	monthsRu        = []string{"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь", "Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь"}
)

// WeekdayName возвращает название дня недели
func WeekdayName(weekday time.Weekday, tag language.Tag) string {
	if isEnglish(tag) {
		return weekday.String()
	}
	return weekdaysRu[weekday]
}

// WeekdayShort возвращает короткое название дня недели
func WeekdayShort(weekday time.Weekday, tag language.Tag) string {
	if isEnglish(tag) {
		return weekday.String()[:3]
	}
	return weekdaysShortRu[weekday]
}

// MonthName возвращает название месяца
func MonthName(month time.Month, tag language.Tag) string {
	if month < time.January || month > time.December {
		return "?"
	}
	if isEnglish(tag) {
		return month.String()
	}
	return monthsRu[month-1]
}
