package service

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/formatting"
	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("access denied")
	// ErrStaleRead - загрузка вытеснена более поздней. Не показывается пользователю
	ErrStaleRead = errors.New("stale read: load superseded")
	ErrClosed    = errors.New("scheduler closed")
)

// ValidationError - некорректный запрос, отклоняется до любого I/O
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError - пересечение с другим занятием того же инструктора
type ConflictError struct {
	Lesson *model.Lesson // занятие, с которым пересекается запрос
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: instructor %d is busy %s-%s (lesson %d)",
		e.Lesson.InstructorID,
		e.Lesson.SessionDate.Format("2006-01-02 15:04"),
		e.Lesson.End().Format("15:04"),
		e.Lesson.ID,
	)
}

// PersistenceError - хранилище недоступно или отклонило запись.
// Операция не подтверждена, состояние в памяти не изменено
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// ErrorMessage возвращает пользовательское сообщение для ошибки.
// Для вытесненной загрузки возвращает пустую строку
func ErrorMessage(err error) string {
	var (
		validationErr  *ValidationError
		conflictErr    *ConflictError
		persistenceErr *PersistenceError
	)

	switch {
	case err == nil, errors.Is(err, ErrStaleRead):
		return ""
	case errors.As(err, &validationErr):
		return "❌ " + validationErr.Message
	case errors.As(err, &conflictErr):
		l := conflictErr.Lesson
		return fmt.Sprintf("❌ Инструктор занят: %s %s",
			formatting.FormatDate(l.SessionDate),
			formatting.FormatTimeRange(l.SessionDate, l.End()))
	case errors.Is(err, ErrNotFound):
		return "❌ Не найдено"
	case errors.Is(err, ErrForbidden):
		return "❌ Нет доступа"
	case errors.Is(err, ledger.ErrFetch):
		return "❌ Не удалось загрузить баланс пакета: " + err.Error()
	case errors.As(err, &persistenceErr):
		return "❌ Ошибка сохранения: " + persistenceErr.Error()
	case errors.Is(err, ErrClosed):
		return "❌ Расписание закрыто, откройте его заново"
	default:
		return "❌ Произошла ошибка"
	}
}
