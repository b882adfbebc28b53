package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/conflict"
	"github.com/Freeeeeet/autoschool_bot/internal/grid"
	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/timeutil"
	"go.uber.org/zap"
)

type ViewState string

const (
	StateIdle       ViewState = "idle"
	StateLoading    ViewState = "loading"
	StateReady      ViewState = "ready"
	StateSubmitting ViewState = "submitting"
	StateError      ViewState = "error"
)

type ViewMode string

const (
	ViewDay  ViewMode = "day"
	ViewWeek ViewMode = "week"
	// ViewToday - дневной вид, привязанный к текущей дате. Навигация отключена
	ViewToday ViewMode = "today"
)

// Valid проверяет что вид известен
func (m ViewMode) Valid() bool {
	return m == ViewDay || m == ViewWeek || m == ViewToday
}

// Commit - результат успешной записи
type Commit struct {
	Lesson    *model.Lesson          `json:"lesson"`
	Ledger    *ledger.Stats          `json:"ledger,omitempty"`
	LedgerErr error                  `json:"-"` // запись прошла, а пересчёт баланса нет
	Warning   *ledger.OverageWarning `json:"warning,omitempty"`
}

// Scheduler - состояние одного вида расписания (день/неделя/сегодня).
// Один экземпляр на сессию сотрудника
type Scheduler struct {
	lessons  LessonStore
	packages PackageStore
	ledgers  *LedgerService
	viewer   ClientViewer
	session  Session
	opts     Options
	logger   *zap.Logger

	mu         sync.Mutex
	state      ViewState
	err        error
	mode       ViewMode
	anchor     time.Time
	instructor *int64
	rangeStart time.Time
	rangeEnd   time.Time
	loaded     bool // visible соответствует rangeStart/rangeEnd/instructor
	visible    []*model.Lesson
	stats      map[int64]*ledger.Stats
	generation uint64
	cancelLoad context.CancelFunc
	closed     bool
}

func NewScheduler(
	lessons LessonStore,
	packages PackageStore,
	ledgers *LedgerService,
	viewer ClientViewer,
	session Session,
	opts Options,
	logger *zap.Logger,
) *Scheduler {
	opts = opts.withDefaults()
	s := &Scheduler{
		lessons:    lessons,
		packages:   packages,
		ledgers:    ledgers,
		viewer:     viewer,
		session:    session,
		opts:       opts,
		logger:     logger.With(zap.Int64("staff_id", session.StaffID)),
		state:      StateIdle,
		mode:       ViewWeek,
		anchor:     opts.now(),
		instructor: session.DefaultInstructorFilter(),
		stats:      make(map[int64]*ledger.Stats),
	}
	s.rangeStart, s.rangeEnd = s.periodLocked()
	return s
}

// LoadRange загружает занятия с session_date в [start, end).
// Предыдущая незавершённая загрузка отменяется; вытесненный ответ
// отбрасывается с ErrStaleRead и состояние не меняет
func (s *Scheduler) LoadRange(ctx context.Context, instructorID *int64, start, end time.Time) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.generation++
	gen := s.generation
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.state = StateLoading
	s.err = nil
	s.instructor = copyID(instructorID)
	s.rangeStart, s.rangeEnd = start, end
	s.loaded = false
	s.mu.Unlock()
	defer cancel()

	lessons, err := s.lessons.ListLessons(loadCtx, LessonFilter{
		InstructorID: instructorID,
		From:         start,
		To:           end,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.closed {
		s.logger.Debug("Discarded stale load", zap.Uint64("generation", gen))
		return ErrStaleRead
	}
	s.cancelLoad = nil

	if err != nil {
		perr := persistence("load lessons", err)
		s.visible = nil
		s.stats = make(map[int64]*ledger.Stats)
		s.state = StateError
		s.err = perr
		s.logger.Error("Failed to load lessons", zap.Time("from", start), zap.Time("to", end), zap.Error(err))
		return perr
	}

	sortLessons(lessons)
	s.visible = lessons
	s.loaded = true
	s.stats = make(map[int64]*ledger.Stats)
	s.state = StateReady

	s.logger.Debug("Lessons loaded", zap.Int("count", len(lessons)), zap.Time("from", start), zap.Time("to", end))
	return nil
}

// Open задаёт вид, дату и фильтр инструктора одной загрузкой.
// Нулевая дата оставляет текущую
func (s *Scheduler) Open(ctx context.Context, mode ViewMode, anchor time.Time, instructorID *int64) error {
	if !mode.Valid() {
		return invalid("view", "неизвестный вид расписания")
	}
	s.mu.Lock()
	s.mode = mode
	if !anchor.IsZero() {
		s.anchor = anchor.In(s.opts.Location)
	}
	s.instructor = copyID(instructorID)
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Refresh перезагружает текущий вид
func (s *Scheduler) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.mode == ViewToday {
		s.anchor = s.opts.now()
	}
	start, end := s.periodLocked()
	instructor := copyID(s.instructor)
	s.mu.Unlock()

	return s.LoadRange(ctx, instructor, start, end)
}

// SetView переключает день/неделю/сегодня и перезагружает вид
func (s *Scheduler) SetView(ctx context.Context, mode ViewMode) error {
	if !mode.Valid() {
		return invalid("view", "неизвестный вид расписания")
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// SetAnchor переходит к дате. В виде "сегодня" переключает на дневной вид
func (s *Scheduler) SetAnchor(ctx context.Context, anchor time.Time) error {
	s.mu.Lock()
	s.anchor = anchor.In(s.opts.Location)
	if s.mode == ViewToday {
		s.mode = ViewDay
	}
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Next листает вперёд на день или неделю
func (s *Scheduler) Next(ctx context.Context) error {
	return s.shift(ctx, 1)
}

// Prev листает назад на день или неделю
func (s *Scheduler) Prev(ctx context.Context) error {
	return s.shift(ctx, -1)
}

func (s *Scheduler) shift(ctx context.Context, direction int) error {
	s.mu.Lock()
	switch s.mode {
	case ViewToday:
		s.mu.Unlock()
		return nil
	case ViewDay:
		s.anchor = s.anchor.AddDate(0, 0, direction)
	default:
		s.anchor = s.anchor.AddDate(0, 0, direction*timeutil.DaysInWeek)
	}
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// SetInstructorFilter меняет фильтр (nil - все инструкторы) и перезагружает вид
func (s *Scheduler) SetInstructorFilter(ctx context.Context, instructorID *int64) error {
	s.mu.Lock()
	s.instructor = copyID(instructorID)
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// CreateOrUpdate проверяет пересечения и сохраняет занятие. ID == 0 - новое
func (s *Scheduler) CreateOrUpdate(ctx context.Context, lesson *model.Lesson) (*Commit, error) {
	if lesson == nil {
		return nil, invalid("lesson", "пустое занятие")
	}
	candidate := *lesson
	if candidate.Status == "" {
		candidate.Status = model.LessonStatusPlanned
	}
	if err := s.validate(&candidate); err != nil {
		return nil, err
	}

	snap, err := s.beginSubmit()
	if err != nil {
		return nil, err
	}

	var existing *model.Lesson
	if candidate.ID != 0 {
		existing, err = s.lessons.GetLesson(ctx, candidate.ID)
		if err != nil {
			return nil, s.fail(persistence("get lesson", err))
		}
		if existing == nil {
			return nil, s.fail(notFound("lesson", candidate.ID))
		}
		candidate.CreatedAt = existing.CreatedAt
	}

	pkg, err := s.packages.GetPackage(ctx, candidate.PackageID)
	if err != nil {
		return nil, s.fail(persistence("get package", err))
	}
	if pkg == nil {
		return nil, s.fail(notFound("package", candidate.PackageID))
	}
	if pkg.IsArchived() {
		return nil, s.fail(invalid("package_id", "пакет в архиве"))
	}

	if !candidate.IsCancelled() {
		if err := s.checkConflict(ctx, &candidate, snap); err != nil {
			return nil, s.fail(err)
		}
	}

	if existing == nil {
		err = s.lessons.CreateLesson(ctx, &candidate)
	} else {
		err = s.lessons.UpdateLesson(ctx, &candidate)
	}
	if err != nil {
		return nil, s.fail(persistence("save lesson", err))
	}

	s.applyCommit(&candidate, candidate.ID)

	s.logger.Info("Lesson saved",
		zap.Int64("lesson_id", candidate.ID),
		zap.Int64("package_id", candidate.PackageID),
		zap.Int64("instructor_id", candidate.InstructorID),
		zap.Time("session_date", candidate.SessionDate),
		zap.Int("duration_minutes", candidate.DurationMinutes),
	)

	affected := []int64{candidate.PackageID}
	if existing != nil && existing.PackageID != candidate.PackageID {
		affected = append(affected, existing.PackageID)
	}
	return s.commit(ctx, &candidate, affected...), nil
}

// Cancel отменяет занятие: слот инструктора освобождается, часы не списываются
func (s *Scheduler) Cancel(ctx context.Context, lessonID int64) (*Commit, error) {
	return s.setStatus(ctx, lessonID, model.LessonStatusCancelled)
}

// MarkCompleted отмечает занятие проведённым
func (s *Scheduler) MarkCompleted(ctx context.Context, lessonID int64) (*Commit, error) {
	return s.setStatus(ctx, lessonID, model.LessonStatusCompleted)
}

func (s *Scheduler) setStatus(ctx context.Context, lessonID int64, status model.LessonStatus) (*Commit, error) {
	snap, err := s.beginSubmit()
	if err != nil {
		return nil, err
	}

	lesson, err := s.lessons.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, s.fail(persistence("get lesson", err))
	}
	if lesson == nil {
		return nil, s.fail(notFound("lesson", lessonID))
	}

	updated := *lesson
	updated.Status = status

	// отменённое занятие не занимало слот, его могли отдать другому
	if lesson.IsCancelled() && !updated.IsCancelled() {
		if err := s.checkConflict(ctx, &updated, snap); err != nil {
			return nil, s.fail(err)
		}
	}

	if err := s.lessons.UpdateLesson(ctx, &updated); err != nil {
		return nil, s.fail(persistence("update lesson status", err))
	}

	s.applyCommit(&updated, lessonID)

	s.logger.Info("Lesson status changed",
		zap.Int64("lesson_id", lessonID),
		zap.String("from", string(lesson.Status)),
		zap.String("to", string(status)),
	)

	return s.commit(ctx, &updated, updated.PackageID), nil
}

// Remove удаляет занятие без проверки пересечений
func (s *Scheduler) Remove(ctx context.Context, lessonID int64) (*Commit, error) {
	if _, err := s.beginSubmit(); err != nil {
		return nil, err
	}

	lesson, err := s.lessons.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, s.fail(persistence("get lesson", err))
	}
	if lesson == nil {
		return nil, s.fail(notFound("lesson", lessonID))
	}

	if err := s.lessons.DeleteLesson(ctx, lessonID); err != nil {
		return nil, s.fail(persistence("delete lesson", err))
	}

	s.applyCommit(nil, lessonID)

	s.logger.Info("Lesson removed", zap.Int64("lesson_id", lessonID), zap.Int64("package_id", lesson.PackageID))

	return s.commit(ctx, lesson, lesson.PackageID), nil
}

// Invalidate пересчитывает баланс пакетов. Неудавшийся пересчёт убирает
// старые значения, чтобы не показывать устаревшие цифры
func (s *Scheduler) Invalidate(ctx context.Context, packageIDs ...int64) (map[int64]*ledger.Stats, error) {
	result := make(map[int64]*ledger.Stats, len(packageIDs))
	var errs []error

	for _, id := range packageIDs {
		if _, done := result[id]; done || id == 0 {
			continue
		}
		stats, err := s.ledgers.Recompute(ctx, id)

		s.mu.Lock()
		if err != nil {
			delete(s.stats, id)
		} else {
			s.stats[id] = stats
		}
		s.mu.Unlock()

		if err != nil {
			errs = append(errs, err)
			continue
		}
		result[id] = stats
	}

	return result, errors.Join(errs...)
}

// Ledger возвращает последний пересчитанный баланс пакета
func (s *Scheduler) Ledger(packageID int64) (*ledger.Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[packageID]
	return stats, ok
}

// Layout раскладывает видимые занятия по сетке текущего вида
func (s *Scheduler) Layout() []grid.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := grid.ModeDay
	if s.mode == ViewWeek {
		mode = grid.ModeWeek
	}
	return grid.Layout(mode, s.rangeStart, s.visible, s.opts.Grid, s.opts.Location)
}

// InspectClient передаёт досье клиента, которому принадлежит занятие
func (s *Scheduler) InspectClient(ctx context.Context, lessonID int64) (int64, error) {
	lesson := s.findVisible(lessonID)
	if lesson == nil {
		var err error
		lesson, err = s.lessons.GetLesson(ctx, lessonID)
		if err != nil {
			return 0, persistence("get lesson", err)
		}
		if lesson == nil {
			return 0, notFound("lesson", lessonID)
		}
	}

	pkg, err := s.packages.GetPackage(ctx, lesson.PackageID)
	if err != nil {
		return 0, persistence("get package", err)
	}
	if pkg == nil {
		return 0, notFound("package", lesson.PackageID)
	}

	if s.viewer != nil {
		if err := s.viewer.ShowClient(ctx, pkg.ClientID); err != nil {
			return pkg.ClientID, fmt.Errorf("show client: %w", err)
		}
	}
	return pkg.ClientID, nil
}

// Close отменяет загрузки; поздние ответы отбрасываются
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
}

func (s *Scheduler) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err возвращает ошибку последней операции в состоянии Error
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Lessons возвращает копию видимых занятий
func (s *Scheduler) Lessons() []*model.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.visible)
}

func (s *Scheduler) Range() (time.Time, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeStart, s.rangeEnd
}

func (s *Scheduler) Mode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Scheduler) Anchor() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

func (s *Scheduler) InstructorFilter() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyID(s.instructor)
}

func (s *Scheduler) Session() Session {
	return s.session
}

func (s *Scheduler) Location() *time.Location {
	return s.opts.Location
}

// snapshot - загруженное состояние на момент начала записи
type snapshot struct {
	loaded     bool
	instructor *int64
	start      time.Time
	end        time.Time
	lessons    []*model.Lesson
}

func (s *Scheduler) validate(l *model.Lesson) error {
	if l.PackageID <= 0 {
		return invalid("package_id", "не выбран пакет")
	}
	if l.InstructorID <= 0 {
		return invalid("instructor_id", "не выбран инструктор")
	}
	if l.SessionDate.IsZero() {
		return invalid("session_date", "не указано время начала")
	}
	if !l.Status.Valid() {
		return invalid("status", "неизвестный статус занятия")
	}
	return validateDuration(l.DurationMinutes, s.opts.AllowedDurations)
}

func (s *Scheduler) beginSubmit() (snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return snapshot{}, ErrClosed
	}
	s.state = StateSubmitting
	return snapshot{
		loaded:     s.loaded,
		instructor: copyID(s.instructor),
		start:      s.rangeStart,
		end:        s.rangeEnd,
		lessons:    slices.Clone(s.visible),
	}, nil
}

// fail завершает запись ошибкой. Видимые занятия не меняются.
// Отказ валидации или пересечение возвращают вид в Ready
func (s *Scheduler) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSubmitting {
		return err
	}

	var (
		validationErr *ValidationError
		conflictErr   *ConflictError
	)
	if errors.As(err, &validationErr) || errors.As(err, &conflictErr) || errors.Is(err, ErrNotFound) {
		s.state = s.settledStateLocked()
		return err
	}

	s.state = StateError
	s.err = err
	s.logger.Error("Lesson write failed", zap.Error(err))
	return err
}

func (s *Scheduler) settledStateLocked() ViewState {
	if s.loaded {
		return StateReady
	}
	if s.err != nil {
		return StateError
	}
	return StateIdle
}

// checkConflict проверяет пересечение по загруженному снимку, если он покрывает
// инструктора и окно [start-MaxLessonMinutes, end); иначе догружает окно
func (s *Scheduler) checkConflict(ctx context.Context, candidate *model.Lesson, snap snapshot) error {
	windowStart := candidate.SessionDate.Add(-MaxLessonMinutes * time.Minute)
	windowEnd := candidate.End()

	existing := snap.lessons
	covered := snap.loaded &&
		(snap.instructor == nil || *snap.instructor == candidate.InstructorID) &&
		!windowStart.Before(snap.start) &&
		!windowEnd.After(snap.end)

	if !covered {
		instructorID := candidate.InstructorID
		fetched, err := s.lessons.ListLessons(ctx, LessonFilter{
			InstructorID: &instructorID,
			From:         windowStart,
			To:           windowEnd,
		})
		if err != nil {
			return persistence("load instructor lessons", err)
		}
		existing = fetched
	}

	if clash := conflict.FindConflict(conflict.FromLesson(candidate), existing, candidate.ID); clash != nil {
		s.logger.Warn("Lesson conflict",
			zap.Int64("instructor_id", candidate.InstructorID),
			zap.Time("requested", candidate.SessionDate),
			zap.Int64("conflicting_lesson_id", clash.ID),
		)
		return &ConflictError{Lesson: clash}
	}
	return nil
}

// applyCommit заменяет занятие replacedID в видимом наборе на saved (nil - удаление)
func (s *Scheduler) applyCommit(saved *model.Lesson, replacedID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		s.visible = slices.DeleteFunc(slices.Clone(s.visible), func(l *model.Lesson) bool {
			return l.ID == replacedID
		})
		if saved != nil && s.inViewLocked(saved) {
			stored := *saved
			s.visible = append(s.visible, &stored)
			sortLessons(s.visible)
		}
	}

	if s.loaded {
		s.err = nil
	}
	if s.state == StateSubmitting {
		s.state = s.settledStateLocked()
	}
}

func (s *Scheduler) inViewLocked(l *model.Lesson) bool {
	if s.instructor != nil && *s.instructor != l.InstructorID {
		return false
	}
	return !l.SessionDate.Before(s.rangeStart) && l.SessionDate.Before(s.rangeEnd)
}

// commit пересчитывает баланс затронутых пакетов после записи
func (s *Scheduler) commit(ctx context.Context, lesson *model.Lesson, packageIDs ...int64) *Commit {
	stats, err := s.Invalidate(ctx, packageIDs...)

	result := &Commit{Lesson: lesson, LedgerErr: err}
	if st, ok := stats[lesson.PackageID]; ok {
		result.Ledger = st
		result.Warning = ledger.CheckOverage(*st, 0)
	}
	if result.Warning != nil {
		s.logger.Warn("Package hours exceeded", zap.String("warning", result.Warning.String()))
	}
	if err != nil {
		s.logger.Error("Ledger recompute failed after commit", zap.Int64("lesson_id", lesson.ID), zap.Error(err))
	}
	return result
}

func (s *Scheduler) findVisible(lessonID int64) *model.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.visible {
		if l.ID == lessonID {
			return l
		}
	}
	return nil
}

// periodLocked возвращает границы периода для текущего вида и даты
func (s *Scheduler) periodLocked() (time.Time, time.Time) {
	if s.mode == ViewWeek {
		return timeutil.WeekBounds(s.anchor, s.opts.Location)
	}
	return timeutil.DayBounds(s.anchor, s.opts.Location)
}

func sortLessons(lessons []*model.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		if lessons[i].SessionDate.Equal(lessons[j].SessionDate) {
			return lessons[i].ID < lessons[j].ID
		}
		return lessons[i].SessionDate.Before(lessons[j].SessionDate)
	})
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
