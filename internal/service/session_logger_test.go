package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger(m *memStore, session Session) *SessionLogger {
	logger := zap.NewNop()
	return NewSessionLogger(m, m, NewLedgerService(m, m, m, logger), session, testOptions(), logger)
}

func TestLogSessionSkipsConflictCheck(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 0, id64(7))
	seedLesson(t, m, pkg.ID, 7, at(14, 11, 0), 120) // пересекается с "сейчас"

	commit, err := newTestLogger(m, adminSession).LogSession(context.Background(), pkg.ID, 1.5)
	require.NoError(t, err)

	assert.Equal(t, model.LessonStatusCompleted, commit.Lesson.Status)
	assert.Equal(t, int64(7), commit.Lesson.InstructorID)
	assert.Equal(t, testNow, commit.Lesson.SessionDate)
	assert.Equal(t, 90, commit.Lesson.DurationMinutes)
	require.NotNil(t, commit.Ledger)
	assert.InDelta(t, 6.5, commit.Ledger.RemainingHours, 1e-9)
	assert.Equal(t, 2, m.lessonCount())
	assert.Equal(t, 1, m.calls(), "only the ledger reads lessons")
}

func TestLogSessionUsesInstructorFromSession(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 0, nil)

	commit, err := newTestLogger(m, instructorSession).LogSession(context.Background(), pkg.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, instructorSession.StaffID, commit.Lesson.InstructorID)

	_, err = newTestLogger(m, adminSession).LogSession(context.Background(), pkg.ID, 2)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "instructor_id", validationErr.Field)
}

func TestLogSessionAtRetroactiveDate(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 0, id64(7))
	l := newTestLogger(m, adminSession)

	commit, err := l.LogSessionAt(context.Background(), LogInput{
		PackageID: pkg.ID,
		Hours:     1,
		At:        at(10, 18, 0),
		Summary:   "Город",
	})
	require.NoError(t, err)
	assert.Equal(t, at(10, 18, 0), commit.Lesson.SessionDate)
	assert.Equal(t, "Город", commit.Lesson.Summary)

	_, err = l.LogSessionAt(context.Background(), LogInput{PackageID: pkg.ID, Hours: 1, At: at(15, 9, 0)})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "session_date", validationErr.Field)
}

func TestLogSessionValidation(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 10, 0, id64(7))
	l := newTestLogger(m, adminSession)

	_, err := l.LogSession(context.Background(), pkg.ID, 0.75)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "duration", validationErr.Field)

	_, err = l.LogSession(context.Background(), 0, 1)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "package_id", validationErr.Field)

	_, err = l.LogSession(context.Background(), 404, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, m.lessonCount())
}

func TestLogSessionWarnsOnOverage(t *testing.T) {
	m := newMemStore()
	pkg := seedPackage(t, m, 1, 0, id64(7))

	commit, err := newTestLogger(m, adminSession).LogSession(context.Background(), pkg.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, commit.Warning)
	assert.InDelta(t, 1, commit.Warning.OverageHours, 1e-9)
	assert.Equal(t, "1 ч сверх пакета", commit.Ledger.HoursLabel())
}
