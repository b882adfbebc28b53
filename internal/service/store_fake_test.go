package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("connection refused")

// memStore - хранилище в памяти для тестов сервисов
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	lessons  map[int64]*model.Lesson
	packages map[int64]*model.Package
	payments map[int64]*model.Payment
	clients  map[int64]*model.Client
	courses  map[int64]*model.Course
	staff    map[int64]*model.Staff

	listCalls   int
	listErr     error
	writeErr    error
	paymentsErr error
	listHook    func(ctx context.Context, filter LessonFilter) error
}

func newMemStore() *memStore {
	return &memStore{
		lessons:  make(map[int64]*model.Lesson),
		packages: make(map[int64]*model.Package),
		payments: make(map[int64]*model.Payment),
		clients:  make(map[int64]*model.Client),
		courses:  make(map[int64]*model.Course),
		staff:    make(map[int64]*model.Staff),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) ListLessons(ctx context.Context, filter LessonFilter) ([]*model.Lesson, error) {
	m.mu.Lock()
	m.listCalls++
	hook, listErr := m.listHook, m.listErr
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, filter); err != nil {
			return nil, err
		}
	}
	if listErr != nil {
		return nil, listErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*model.Lesson
	for _, l := range m.lessons {
		switch {
		case filter.InstructorID != nil && l.InstructorID != *filter.InstructorID:
		case filter.PackageID != nil && l.PackageID != *filter.PackageID:
		case !filter.From.IsZero() && l.SessionDate.Before(filter.From):
		case !filter.To.IsZero() && !l.SessionDate.Before(filter.To):
		case len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, l.Status):
		default:
			c := *l
			result = append(result, &c)
		}
	}
	return result, nil
}

func (m *memStore) GetLesson(_ context.Context, id int64) (*model.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (m *memStore) CreateLesson(_ context.Context, lesson *model.Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	lesson.ID = m.id()
	lesson.CreatedAt = time.Now()
	lesson.UpdatedAt = lesson.CreatedAt
	c := *lesson
	m.lessons[lesson.ID] = &c
	return nil
}

func (m *memStore) UpdateLesson(_ context.Context, lesson *model.Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.lessons[lesson.ID]; !ok {
		return errors.New("lesson not found")
	}
	lesson.UpdatedAt = time.Now()
	c := *lesson
	m.lessons[lesson.ID] = &c
	return nil
}

func (m *memStore) DeleteLesson(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.lessons, id)
	return nil
}

func (m *memStore) CompletePastLessons(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, l := range m.lessons {
		if l.Status == model.LessonStatusPlanned && !l.End().After(before) {
			l.Status = model.LessonStatusCompleted
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetPackage(_ context.Context, id int64) (*model.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *memStore) ListPackages(_ context.Context, filter PackageFilter) ([]*model.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Package
	for _, p := range m.packages {
		switch {
		case filter.ClientID != nil && p.ClientID != *filter.ClientID:
		case filter.InstructorID != nil && (p.InstructorID == nil || *p.InstructorID != *filter.InstructorID):
		case filter.Status != nil && p.Status != *filter.Status:
		default:
			c := *p
			result = append(result, &c)
		}
	}
	return result, nil
}

func (m *memStore) CreatePackage(_ context.Context, pkg *model.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pkg.ID = m.id()
	c := *pkg
	m.packages[pkg.ID] = &c
	return nil
}

func (m *memStore) UpdatePackage(_ context.Context, pkg *model.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *pkg
	m.packages[pkg.ID] = &c
	return nil
}

func (m *memStore) ListPayments(_ context.Context, packageID int64) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paymentsErr != nil {
		return nil, m.paymentsErr
	}
	var result []*model.Payment
	for _, p := range m.payments {
		if p.PackageID == packageID {
			c := *p
			result = append(result, &c)
		}
	}
	return result, nil
}

func (m *memStore) GetPayment(_ context.Context, id int64) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *memStore) CreatePayment(_ context.Context, payment *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	payment.ID = m.id()
	c := *payment
	m.payments[payment.ID] = &c
	return nil
}

func (m *memStore) UpdatePaymentStatus(_ context.Context, id int64, status model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[id].Status = status
	return nil
}

func (m *memStore) GetClient(_ context.Context, id int64) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) CreateClient(_ context.Context, client *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	client.ID = m.id()
	c := *client
	m.clients[client.ID] = &c
	return nil
}

func (m *memStore) SetClientActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[id].IsActive = active
	return nil
}

func (m *memStore) GetCourse(_ context.Context, id int64) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) ListCourses(_ context.Context, activeOnly bool) ([]*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Course
	for _, c := range m.courses {
		if activeOnly && !c.IsActive {
			continue
		}
		cp := *c
		result = append(result, &cp)
	}
	return result, nil
}

func (m *memStore) CreateCourse(_ context.Context, course *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	course.ID = m.id()
	c := *course
	m.courses[course.ID] = &c
	return nil
}

func (m *memStore) SetCourseActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[id].IsActive = active
	return nil
}

func (m *memStore) GetStaff(_ context.Context, id int64) (*model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *memStore) GetStaffByTelegramID(_ context.Context, telegramID int64) (*model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.staff {
		if s.TelegramID != nil && *s.TelegramID == telegramID {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListStaff(_ context.Context, role *model.Role) ([]*model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Staff
	for _, s := range m.staff {
		if role != nil && s.Role != *role {
			continue
		}
		c := *s
		result = append(result, &c)
	}
	return result, nil
}

func (m *memStore) CreateStaff(_ context.Context, staff *model.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staff.ID = m.id()
	c := *staff
	m.staff[staff.ID] = &c
	return nil
}

func (m *memStore) lessonCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lessons)
}

func (m *memStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *memStore) set(fn func(m *memStore)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

var _ Store = (*memStore)(nil)

// Среда 14.10.2026 12:00 UTC
var testNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Location:         time.UTC,
		AllowedDurations: DefaultDurations,
		Now:              func() time.Time { return testNow },
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

func seedPackage(t *testing.T, m *memStore, totalHours float64, price int64, instructorID *int64) *model.Package {
	t.Helper()
	pkg := &model.Package{
		ClientID:      100,
		TotalHours:    totalHours,
		ContractPrice: price,
		Status:        model.PackageStatusActive,
		InstructorID:  instructorID,
	}
	require.NoError(t, m.CreatePackage(context.Background(), pkg))
	return pkg
}

func seedLesson(t *testing.T, m *memStore, packageID, instructorID int64, start time.Time, minutes int) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{
		PackageID:       packageID,
		InstructorID:    instructorID,
		SessionDate:     start,
		DurationMinutes: minutes,
		Status:          model.LessonStatusPlanned,
	}
	require.NoError(t, m.CreateLesson(context.Background(), lesson))
	return lesson
}

func newTestScheduler(m *memStore, session Session, viewer ClientViewer) *Scheduler {
	logger := zap.NewNop()
	ledgers := NewLedgerService(m, m, m, logger)
	return NewScheduler(m, m, ledgers, viewer, session, testOptions(), logger)
}

func id64(v int64) *int64 { return &v }
