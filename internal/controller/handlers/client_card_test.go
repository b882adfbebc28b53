package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/app"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/sqlite"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []*bot.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &models.Message{}, nil
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	migrator, err := app.NewSQLiteMigrator(store.DB(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Run(context.Background()))
	return store
}

func TestClientCardShownForLesson(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	logger := zap.NewNop()

	instructor := &model.Staff{FullName: "Сидоров Олег", Role: model.RoleInstructor, IsActive: true}
	require.NoError(t, store.CreateStaff(ctx, instructor))
	client := &model.Client{FullName: "Иванов Пётр", Phone: "+79990001122", Gear: model.GearManual, IsActive: true}
	require.NoError(t, store.CreateClient(ctx, client))
	pkg := &model.Package{ClientID: client.ID, TotalHours: 10, ContractPrice: 1200000, Status: model.PackageStatusActive, InstructorID: &instructor.ID}
	require.NoError(t, store.CreatePackage(ctx, pkg))
	lesson := &model.Lesson{
		PackageID:       pkg.ID,
		InstructorID:    instructor.ID,
		SessionDate:     time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 90,
		Status:          model.LessonStatusPlanned,
	}
	require.NoError(t, store.CreateLesson(ctx, lesson))

	sender := &fakeSender{}
	card := &clientCard{
		bot:       sender,
		chatID:    77,
		directory: service.NewDirectoryService(store, store, store, logger),
		packages:  service.NewPackageService(store, store, store, store, logger),
		logger:    logger,
	}
	sess := service.Session{StaffID: instructor.ID, Role: model.RoleInstructor}
	ledgers := service.NewLedgerService(store, store, store, logger)
	sched := service.NewScheduler(store, store, ledgers, card, sess, service.Options{Location: time.UTC}, logger)
	defer sched.Close()

	clientID, err := sched.InspectClient(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, clientID)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(77), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "👤 Иванов Пётр")
	assert.Contains(t, sender.sent[0].Text, "Коробка: механика")
	assert.Contains(t, sender.sent[0].Text, "• #1: 10 ч, активен")

	sender.err = errors.New("chat not found")
	_, err = sched.InspectClient(ctx, lesson.ID)
	assert.ErrorContains(t, err, "send client card")
}
