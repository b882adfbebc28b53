// Package timeutil переводит даты в границы дня/недели и смещения в часах
// для размещения занятий на сетке расписания.
package timeutil

import "time"

// DaysInWeek - количество колонок недельной сетки
const DaysInWeek = 7

// StartOfDay нормализует время к началу дня в указанной зоне
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayBounds возвращает полуинтервал [начало дня, начало следующего дня)
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// WeekdayIndex возвращает индекс дня недели, начиная с понедельника (0..6)
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StartOfWeek нормализует дату к понедельнику её недели
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -WeekdayIndex(day))
}

// WeekBounds возвращает полуинтервал [понедельник, следующий понедельник)
func WeekBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfWeek(t, loc)
	return start, start.AddDate(0, 0, DaysInWeek)
}

// HourOfDay возвращает время суток в часах, например 10:30 -> 10.5
func HourOfDay(t time.Time, loc *time.Location) float64 {
	t = t.In(loc)
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// HourOffset возвращает смещение от начала сетки в часах.
// Отрицательное значение - занятие начинается раньше видимой части сетки.
func HourOffset(t time.Time, gridStartHour int, loc *time.Location) float64 {
	return HourOfDay(t, loc) - float64(gridStartHour)
}

// IsSameDay проверяет что два момента попадают в один календарный день
func IsSameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// ParseDate разбирает дату формата 2006-01-02 в указанной зоне
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, loc)
}

// HoursToMinutes переводит часы (1, 1.5, 2.5...) в целые минуты
func HoursToMinutes(hours float64) int {
	if hours < 0 {
		return -int(-hours*60 + 0.5)
	}
	return int(hours*60 + 0.5)
}

// MinutesToHours переводит минуты в часы
func MinutesToHours(minutes int) float64 {
	return float64(minutes) / 60
}
