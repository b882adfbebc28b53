package handlers

import (
	"context"

	"github.com/Freeeeeet/autoschool_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/autoschool_bot/internal/grid"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallback обрабатывает кнопки навигации по расписанию
func (h *Handlers) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	// Сообщение могло стать недоступным (старше 48 часов)
	if cq.Message.Message == nil {
		answerCallback(ctx, b, cq.ID, "Сообщение устарело, откройте /today")
		return
	}
	chatID := cq.Message.Message.Chat.ID

	h.logger.Debug("Callback received",
		zap.Int64("telegram_id", cq.From.ID),
		zap.String("data", cq.Data),
	)

	sess, ok := h.requireStaff(ctx, b, chatID, &cq.From)
	if !ok {
		answerCallback(ctx, b, cq.ID, "")
		return
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sched := h.scheduler(b, cq.From.ID, chatID, sess)

	var err error
	switch cq.Data {
	case keyboard.SchedulePrev:
		err = sched.Prev(ctx)
	case keyboard.ScheduleNext:
		err = sched.Next(ctx)
	case keyboard.ScheduleToday:
		err = sched.Open(ctx, service.ViewToday, h.now(), sched.InstructorFilter())
	case keyboard.ScheduleDay:
		err = sched.Open(ctx, service.ViewDay, sched.Anchor(), sched.InstructorFilter())
	case keyboard.ScheduleWeek:
		err = sched.Open(ctx, service.ViewWeek, sched.Anchor(), sched.InstructorFilter())
	default:
		h.logger.Warn("Unknown callback", zap.String("data", cq.Data))
		answerCallback(ctx, b, cq.ID, "Неизвестная команда")
		return
	}

	answerCallback(ctx, b, cq.ID, "")
	h.showSchedule(ctx, b, chatID, sched, err)
}

func (h *Handlers) navigation(mode service.ViewMode) models.ReplyMarkup {
	return keyboard.ScheduleNavigation(mode)
}

func (h *Handlers) renderWeek(sched *service.Scheduler, labels map[int64]string) ([]byte, error) {
	return grid.RenderWeekPNG(grid.WeekImage{
		Anchor:   sched.Anchor(),
		Lessons:  sched.Lessons(),
		Labels:   labels,
		Now:      h.now(),
		Location: sched.Location(),
		Locale:   sched.Session().Locale,
		Config:   h.opts.Grid,
	})
}
