package model

import "time"

type LessonStatus string

const (
	LessonStatusPlanned   LessonStatus = "planned"   // Запланировано
	LessonStatusCompleted LessonStatus = "completed" // Проведено
	LessonStatusCancelled LessonStatus = "cancelled" // Отменено, слот инструктора свободен
)

// Valid проверяет что статус известен
func (s LessonStatus) Valid() bool {
	switch s {
	case LessonStatusPlanned, LessonStatusCompleted, LessonStatusCancelled:
		return true
	}
	return false
}

// Lesson - занятие по вождению, списывающее часы с пакета
type Lesson struct {
	ID              int64        `json:"id"`
	PackageID       int64        `json:"package_id"`
	InstructorID    int64        `json:"instructor_id"`
	SessionDate     time.Time    `json:"session_date"`     // абсолютное время начала
	DurationMinutes int          `json:"duration_minutes"` // 60, 90, 120, 150, 180, 240
	Location        string       `json:"location"`
	Summary         string       `json:"summary"`
	Status          LessonStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// End возвращает время окончания занятия
func (l *Lesson) End() time.Time {
	return l.SessionDate.Add(l.Duration())
}

// Duration возвращает длительность как time.Duration
func (l *Lesson) Duration() time.Duration {
	return time.Duration(l.DurationMinutes) * time.Minute
}

// Hours возвращает длительность в часах
func (l *Lesson) Hours() float64 {
	return float64(l.DurationMinutes) / 60
}

// IsCancelled: отменённые занятия не занимают слот и не списывают часы
func (l *Lesson) IsCancelled() bool {
	return l.Status == LessonStatusCancelled
}
