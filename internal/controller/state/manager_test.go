package state

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func session(staffID int64, role model.Role) service.Session {
	return service.Session{StaffID: staffID, Role: role, Locale: language.Russian}
}

func newView(sess service.Session) func() *service.Scheduler {
	return func() *service.Scheduler {
		return service.NewScheduler(nil, nil, nil, nil, sess, service.Options{Location: time.UTC}, zap.NewNop())
	}
}

func TestRegistryReusesViewOfSameStaff(t *testing.T) {
	r := NewRegistry()

	sess := session(7, model.RoleInstructor)
	first := r.Open(100, sess, newView(sess))
	again := r.Open(100, sess, newView(sess))
	assert.Same(t, first, again)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(100)
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistryReplacesViewOfOtherStaff(t *testing.T) {
	r := NewRegistry()

	old := r.Open(100, session(7, model.RoleInstructor), newView(session(7, model.RoleInstructor)))
	fresh := r.Open(100, session(8, model.RoleInstructor), newView(session(8, model.RoleInstructor)))

	assert.NotSame(t, old, fresh)
	assert.ErrorIs(t, old.Refresh(context.Background()), service.ErrClosed)
	assert.Equal(t, int64(8), fresh.Session().StaffID)
}

func TestRegistryReplacesViewWhenRoleChanges(t *testing.T) {
	r := NewRegistry()

	admin := session(7, model.RoleAdmin)
	old := r.Open(100, admin, newView(admin))
	assert.Nil(t, old.InstructorFilter())

	instructor := session(7, model.RoleInstructor)
	fresh := r.Open(100, instructor, newView(instructor))

	assert.NotSame(t, old, fresh)
	assert.ErrorIs(t, old.Refresh(context.Background()), service.ErrClosed)
	assert.Equal(t, model.RoleInstructor, fresh.Session().Role)
	require.NotNil(t, fresh.InstructorFilter())
	assert.Equal(t, int64(7), *fresh.InstructorFilter())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryDropAndCloseAll(t *testing.T) {
	r := NewRegistry()
	a := r.Open(1, session(7, model.RoleInstructor), newView(session(7, model.RoleInstructor)))
	b := r.Open(2, session(8, model.RoleAdmin), newView(session(8, model.RoleAdmin)))

	r.Drop(1)
	_, ok := r.Get(1)
	assert.False(t, ok)
	assert.ErrorIs(t, a.Refresh(context.Background()), service.ErrClosed)

	r.CloseAll()
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, b.Refresh(context.Background()), service.ErrClosed)
}
