package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/app"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/base"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openTestStore подключается к DB_DSN и раскатывает миграции в отдельную схему,
// которая удаляется после теста
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN is not set")
	}
	ctx := context.Background()

	schema := "autoschool_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `CREATE SCHEMA `+pgx.Identifier{schema}.Sanitize())
	require.NoError(t, err)

	migrator, err := app.NewPostgresMigrator(pool, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = migrator.Close()
		if _, err := pool.Exec(context.Background(), `DROP SCHEMA `+pgx.Identifier{schema}.Sanitize()+` CASCADE`); err != nil {
			t.Errorf("drop schema %s: %v", schema, err)
		}
		pool.Close()
	})

	require.NoError(t, migrator.Run(ctx))
	version, err := migrator.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), version)

	return NewStore(pool)
}

type fixture struct {
	instructor *model.Staff
	other      *model.Staff
	client     *model.Client
	course     *model.Course
	pkg        *model.Package
}

func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()

	tg := int64(4242)
	discounted := int64(4500000)
	f := fixture{
		instructor: &model.Staff{TelegramID: &tg, FullName: "Сидоров Олег", Role: model.RoleInstructor, IsActive: true},
		other:      &model.Staff{FullName: "Петров Иван", Role: model.RoleInstructor, IsActive: true},
		client:     &model.Client{FullName: "Иванов Пётр", Gear: model.GearManual, IsActive: true},
		course:     &model.Course{Name: "Категория B", Category: "B", TotalHours: 56, BasePrice: 5000000, DiscountedPrice: &discounted, IsActive: true},
	}
	require.NoError(t, s.CreateStaff(ctx, f.instructor))
	require.NoError(t, s.CreateStaff(ctx, f.other))
	require.NoError(t, s.CreateClient(ctx, f.client))
	require.NoError(t, s.CreateCourse(ctx, f.course))

	f.pkg = &model.Package{
		ClientID:      f.client.ID,
		CourseID:      &f.course.ID,
		TotalHours:    10,
		ContractPrice: 12000,
		Status:        model.PackageStatusActive,
		InstructorID:  &f.instructor.ID,
	}
	require.NoError(t, s.CreatePackage(ctx, f.pkg))
	return f
}

func TestStoreLessons(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	day := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
	lessons := []*model.Lesson{
		{InstructorID: f.instructor.ID, SessionDate: day.Add(9 * time.Hour), Status: model.LessonStatusPlanned},
		{InstructorID: f.instructor.ID, SessionDate: day.Add(23 * time.Hour), Status: model.LessonStatusCancelled},
		{InstructorID: f.instructor.ID, SessionDate: day.Add(24 * time.Hour), Status: model.LessonStatusPlanned}, // следующий день
		{InstructorID: f.other.ID, SessionDate: day.Add(9 * time.Hour), Status: model.LessonStatusPlanned},
	}
	for _, l := range lessons {
		l.PackageID = f.pkg.ID
		l.DurationMinutes = 60
		l.Location = "Автодром"
		require.NoError(t, s.CreateLesson(ctx, l))
		require.NotZero(t, l.ID)
	}

	got, err := s.GetLesson(ctx, lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, got.SessionDate.Equal(lessons[0].SessionDate))
	assert.Equal(t, "Автодром", got.Location)

	inDay, err := s.ListLessons(ctx, service.LessonFilter{
		InstructorID: &f.instructor.ID,
		From:         day,
		To:           day.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Len(t, inDay, 2)
	assert.True(t, inDay[0].SessionDate.Before(inDay[1].SessionDate))

	cancelled, err := s.ListLessons(ctx, service.LessonFilter{
		PackageID: &f.pkg.ID,
		Statuses:  []model.LessonStatus{model.LessonStatusCancelled},
	})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, lessons[1].ID, cancelled[0].ID)

	got.Status = model.LessonStatusCompleted
	got.Summary = "Парковка задним ходом"
	require.NoError(t, s.UpdateLesson(ctx, got))
	got, err = s.GetLesson(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonStatusCompleted, got.Status)
	assert.Equal(t, "Парковка задним ходом", got.Summary)

	require.NoError(t, s.DeleteLesson(ctx, lessons[3].ID))
	missing, err := s.GetLesson(ctx, lessons[3].ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.True(t, errors.Is(s.DeleteLesson(ctx, lessons[3].ID), base.ErrNoRowsAffected))
}

func TestStoreCompletePastLessons(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	ended := &model.Lesson{PackageID: f.pkg.ID, InstructorID: f.instructor.ID, SessionDate: now.Add(-2 * time.Hour), DurationMinutes: 120, Status: model.LessonStatusPlanned}
	running := &model.Lesson{PackageID: f.pkg.ID, InstructorID: f.instructor.ID, SessionDate: now.Add(-time.Hour), DurationMinutes: 120, Status: model.LessonStatusPlanned}
	cancelled := &model.Lesson{PackageID: f.pkg.ID, InstructorID: f.instructor.ID, SessionDate: now.Add(-5 * time.Hour), DurationMinutes: 60, Status: model.LessonStatusCancelled}
	for _, l := range []*model.Lesson{ended, running, cancelled} {
		require.NoError(t, s.CreateLesson(ctx, l))
	}

	n, err := s.CompletePastLessons(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for _, tt := range []struct {
		lesson *model.Lesson
		want   model.LessonStatus
	}{
		{ended, model.LessonStatusCompleted},
		{running, model.LessonStatusPlanned},
		{cancelled, model.LessonStatusCancelled},
	} {
		got, err := s.GetLesson(ctx, tt.lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Status)
	}
}

func TestStorePackagesAndPayments(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	pkg, err := s.GetPackage(ctx, f.pkg.ID)
	require.NoError(t, err)
	require.NotNil(t, pkg.InstructorID)
	assert.Equal(t, f.instructor.ID, *pkg.InstructorID)

	pkg.InstructorID = nil
	pkg.Status = model.PackageStatusArchived
	require.NoError(t, s.UpdatePackage(ctx, pkg))

	archived := model.PackageStatusArchived
	list, err := s.ListPackages(ctx, service.PackageFilter{ClientID: &f.client.ID, Status: &archived})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].InstructorID)

	ref := uuid.New()
	payment := &model.Payment{
		PackageID: pkg.ID,
		Amount:    3000,
		Method:    model.PaymentMethodTransfer,
		Plan:      model.PaymentPlanInstallment,
		Status:    model.PaymentStatusPending,
		Reference: ref,
		PaidAt:    time.Date(2026, time.October, 1, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreatePayment(ctx, payment))
	require.NoError(t, s.UpdatePaymentStatus(ctx, payment.ID, model.PaymentStatusCompleted))

	got, err := s.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, ref, got.Reference)
	assert.Equal(t, model.PaymentStatusCompleted, got.Status)
	assert.True(t, got.PaidAt.Equal(payment.PaidAt))

	payments, err := s.ListPayments(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	missing, err := s.GetPackage(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreDirectory(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	staff, err := s.GetStaffByTelegramID(ctx, *f.instructor.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, f.instructor.ID, staff.ID)

	role := model.RoleInstructor
	instructors, err := s.ListStaff(ctx, &role)
	require.NoError(t, err)
	assert.Len(t, instructors, 2)

	require.NoError(t, s.SetClientActive(ctx, f.client.ID, false))
	client, err := s.GetClient(ctx, f.client.ID)
	require.NoError(t, err)
	assert.False(t, client.IsActive)

	course, err := s.GetCourse(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4500000), course.EffectivePrice())

	require.NoError(t, s.SetCourseActive(ctx, f.course.ID, false))
	active, err := s.ListCourses(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestStoreWorksWithScheduler(t *testing.T) {
	s := openTestStore(t)
	f := seed(t, s)
	ctx := context.Background()
	logger := zap.NewNop()

	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	opts := service.Options{Location: time.UTC, AllowedDurations: service.DefaultDurations, Now: func() time.Time { return now }}
	session := service.Session{StaffID: f.instructor.ID, Role: model.RoleInstructor}
	scheduler := service.NewScheduler(s, s, service.NewLedgerService(s, s, s, logger), nil, session, opts, logger)

	require.NoError(t, scheduler.SetView(ctx, service.ViewDay))
	commit, err := scheduler.CreateOrUpdate(ctx, &model.Lesson{
		PackageID:       f.pkg.ID,
		InstructorID:    f.instructor.ID,
		SessionDate:     now.Add(-2 * time.Hour),
		DurationMinutes: 180,
	})
	require.NoError(t, err)
	assert.InDelta(t, 7, commit.Ledger.RemainingHours, 1e-9)

	_, err = scheduler.CreateOrUpdate(ctx, &model.Lesson{
		PackageID:       f.pkg.ID,
		InstructorID:    f.instructor.ID,
		SessionDate:     now,
		DurationMinutes: 60,
	})
	var conflictErr *service.ConflictError
	require.ErrorAs(t, err, &conflictErr)
}
