package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/timeutil"
	"go.uber.org/zap"
)

// LogInput - отметка проведённого занятия без слота в календаре
type LogInput struct {
	PackageID int64
	Hours     float64
	At        time.Time // нулевое значение - сейчас
	Location  string
	Summary   string
}

// SessionLogger списывает часы с пакета задним числом. Пересечения не
// проверяются: такое занятие не занимает будущий слот инструктора
type SessionLogger struct {
	lessons  LessonStore
	packages PackageStore
	ledgers  *LedgerService
	session  Session
	opts     Options
	logger   *zap.Logger
}

func NewSessionLogger(
	lessons LessonStore,
	packages PackageStore,
	ledgers *LedgerService,
	session Session,
	opts Options,
	logger *zap.Logger,
) *SessionLogger {
	return &SessionLogger{
		lessons:  lessons,
		packages: packages,
		ledgers:  ledgers,
		session:  session,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// LogSession отмечает занятие длительностью hoursSpent, проведённое сейчас
func (l *SessionLogger) LogSession(ctx context.Context, packageID int64, hoursSpent float64) (*Commit, error) {
	return l.LogSessionAt(ctx, LogInput{PackageID: packageID, Hours: hoursSpent})
}

// LogSessionAt отмечает занятие с явной датой
func (l *SessionLogger) LogSessionAt(ctx context.Context, in LogInput) (*Commit, error) {
	if in.PackageID <= 0 {
		return nil, invalid("package_id", "не выбран пакет")
	}
	minutes := timeutil.HoursToMinutes(in.Hours)
	if err := validateDuration(minutes, l.opts.AllowedDurations); err != nil {
		return nil, err
	}

	now := l.opts.now()
	at := in.At
	if at.IsZero() {
		at = now
	}
	if at.After(now) {
		return nil, invalid("session_date", "нельзя отметить занятие в будущем")
	}

	pkg, err := l.packages.GetPackage(ctx, in.PackageID)
	if err != nil {
		return nil, persistence("get package", err)
	}
	if pkg == nil {
		return nil, notFound("package", in.PackageID)
	}
	if pkg.IsArchived() {
		return nil, invalid("package_id", "пакет в архиве")
	}

	instructorID, err := l.instructorFor(pkg)
	if err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		PackageID:       pkg.ID,
		InstructorID:    instructorID,
		SessionDate:     at,
		DurationMinutes: minutes,
		Location:        in.Location,
		Summary:         in.Summary,
		Status:          model.LessonStatusCompleted,
	}
	if err := l.lessons.CreateLesson(ctx, lesson); err != nil {
		l.logger.Error("Failed to log session", zap.Int64("package_id", pkg.ID), zap.Error(err))
		return nil, persistence("create lesson", err)
	}

	l.logger.Info("Session logged",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("package_id", pkg.ID),
		zap.Int64("instructor_id", instructorID),
		zap.Int("duration_minutes", minutes),
	)

	result := &Commit{Lesson: lesson}
	stats, err := l.ledgers.Recompute(ctx, pkg.ID)
	if err != nil {
		result.LedgerErr = err
		return result, nil
	}
	result.Ledger = stats
	result.Warning = ledger.CheckOverage(*stats, 0)
	if result.Warning != nil {
		l.logger.Warn("Package hours exceeded", zap.String("warning", result.Warning.String()))
	}
	return result, nil
}

// instructorFor: инструктор пакета, иначе сам инструктор из сессии
func (l *SessionLogger) instructorFor(pkg *model.Package) (int64, error) {
	if pkg.InstructorID != nil {
		return *pkg.InstructorID, nil
	}
	if l.session.Role == model.RoleInstructor {
		return l.session.StaffID, nil
	}
	return 0, invalid("instructor_id", "у пакета не назначен инструктор")
}
