package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"Расписание:\n" +
	"/today - Занятия на сегодня\n" +
	"/day [дата] - Расписание дня (2026-10-14 или 14.10.2026)\n" +
	"/week [дата] - Неделя картинкой\n" +
	"/next, /prev - Листать день или неделю\n\n" +
	"Занятия:\n" +
	"/done <id> - Отметить занятие проведённым\n" +
	"/cancel <id> - Отменить занятие\n" +
	"/client <id> - Карточка ученика по занятию\n\n" +
	"Пакеты:\n" +
	"/ledger <пакет> - Остаток часов и оплата\n" +
	"/log <пакет> <часы> - Отметить проведённое занятие без записи"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sess, ok := h.requireStaff(ctx, b, chatID, update.Message.From)
	if !ok {
		return
	}

	role := "инструктор"
	if sess.IsAdmin() {
		role = "администратор"
	}
	h.logger.Info("Staff started bot", zap.Int64("staff_id", sess.StaffID), zap.String("role", string(sess.Role)))

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("👋 Здравствуйте! Вы вошли как %s.\n\n%s", role, helpText), nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleToday показывает занятия на сегодня
func (h *Handlers) HandleToday(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.openView(ctx, b, update, service.ViewToday)
}

// HandleDay показывает день: /day [дата]
func (h *Handlers) HandleDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.openView(ctx, b, update, service.ViewDay)
}

// HandleWeek показывает неделю картинкой: /week [дата]
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.openView(ctx, b, update, service.ViewWeek)
}

// HandleNext листает вперёд
func (h *Handlers) HandleNext(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.navigate(ctx, b, update, (*service.Scheduler).Next)
}

// HandlePrev листает назад
func (h *Handlers) HandlePrev(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.navigate(ctx, b, update, (*service.Scheduler).Prev)
}

func (h *Handlers) openView(ctx context.Context, b *bot.Bot, update *models.Update, mode service.ViewMode) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess, ok := h.requireStaff(ctx, b, chatID, update.Message.From)
	if !ok {
		return
	}

	anchor := h.now()
	if args := commandArgs(update.Message.Text); len(args) > 0 && mode != service.ViewToday {
		parsed, err := parseDate(args[0], h.opts.Location)
		if err != nil {
			h.sendError(ctx, b, chatID, "❌ Дата в формате 2026-10-14 или 14.10.2026")
			return
		}
		anchor = parsed
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sched := h.scheduler(b, update.Message.From.ID, chatID, sess)
	err := sched.Open(ctx, mode, anchor, sched.InstructorFilter())
	h.showSchedule(ctx, b, chatID, sched, err)
}

func (h *Handlers) navigate(ctx context.Context, b *bot.Bot, update *models.Update, step func(*service.Scheduler, context.Context) error) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess, ok := h.requireStaff(ctx, b, chatID, update.Message.From)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sched := h.scheduler(b, update.Message.From.ID, chatID, sess)
	if sched.Mode() == service.ViewToday {
		h.sendMessage(ctx, b, chatID, "📍 В виде «Сегодня» листать нельзя. Откройте /day или /week", nil)
		return
	}
	h.showSchedule(ctx, b, chatID, sched, step(sched, ctx))
}

// HandleLedger показывает баланс пакета: /ledger <пакет>
func (h *Handlers) HandleLedger(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess, ok := h.requireStaff(ctx, b, chatID, update.Message.From)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.sendError(ctx, b, chatID, "❌ Использование: /ledger <номер пакета>")
		return
	}
	packageID, err := parseID(args[0])
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный номер пакета")
		return
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	stats, err := h.ledgers.Recompute(ctx, packageID)
	if err != nil {
		h.sendError(ctx, b, chatID, service.ErrorMessage(err))
		return
	}
	h.sendMessage(ctx, b, chatID, ledgerText(stats, nil, sess.Locale), nil)
}

// HandleLog отмечает проведённое занятие без записи: /log <пакет> <часы>
func (h *Handlers) HandleLog(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess, ok := h.requireStaff(ctx, b, chatID, update.Message.From)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.sendError(ctx, b, chatID, "❌ Использование: /log <номер пакета> <часы>, например /log 12 1,5")
		return
	}
	packageID, err := parseID(args[0])
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный номер пакета")
		return
	}
	hours, err := parseHours(args[1])
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверное количество часов")
		return
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	commit, err := h.sessionLogger(sess).LogSession(ctx, packageID, hours)
	if err != nil {
		h.sendError(ctx, b, chatID, service.ErrorMessage(err))
		return
	}
	h.sendMessage(ctx, b, chatID, commitText("✅ Занятие отмечено", commit, h.opts.Location, sess.Locale), nil)
}

// HandleDone отмечает занятие проведённым: /done <id>
func (h *Handlers) HandleDone(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.lessonCommand(ctx, b, update, "✅ Занятие проведено", (*service.Scheduler).MarkCompleted)
}

// HandleCancelLesson отменяет занятие: /cancel <id>
func (h *Handlers) HandleCancelLesson(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.lessonCommand(ctx, b, update, "❌ Занятие отменено", (*service.Scheduler).Cancel)
}

type lessonAction func(*service.Scheduler, context.Context, int64) (*service.Commit, error)

func (h *Handlers) lessonCommand(ctx context.Context, b *bot.Bot, update *models.Update, title string, action lessonAction) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess, ok := h.requireStaff(ctx, b, chatID, update.Message.From)
	if !ok {
		return
	}

	lessonID, ok := h.lessonArg(ctx, b, chatID, update.Message.Text)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if !h.canChangeLesson(ctx, b, chatID, sess, lessonID) {
		return
	}

	sched := h.scheduler(b, update.Message.From.ID, chatID, sess)
	commit, err := action(sched, ctx, lessonID)
	if err != nil {
		h.sendError(ctx, b, chatID, service.ErrorMessage(err))
		return
	}
	h.sendMessage(ctx, b, chatID, commitText(title, commit, h.opts.Location, sess.Locale), nil)
}

// HandleClient показывает карточку ученика по занятию: /client <id>
func (h *Handlers) HandleClient(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	sess, ok := h.requireStaff(ctx, b, chatID, update.Message.From)
	if !ok {
		return
	}

	lessonID, ok := h.lessonArg(ctx, b, chatID, update.Message.Text)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sched := h.scheduler(b, update.Message.From.ID, chatID, sess)
	if _, err := sched.InspectClient(ctx, lessonID); err != nil {
		h.logger.Warn("Failed to show client", zap.Int64("lesson_id", lessonID), zap.Error(err))
		h.sendError(ctx, b, chatID, service.ErrorMessage(err))
	}
}

func (h *Handlers) lessonArg(ctx context.Context, b *bot.Bot, chatID int64, text string) (int64, bool) {
	args := commandArgs(text)
	if len(args) != 1 {
		h.sendError(ctx, b, chatID, "❌ Укажите номер занятия, например /done 15")
		return 0, false
	}
	id, err := parseID(args[0])
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный номер занятия")
		return 0, false
	}
	return id, true
}

// canChangeLesson: инструктор меняет только свои занятия
func (h *Handlers) canChangeLesson(ctx context.Context, b *bot.Bot, chatID int64, sess service.Session, lessonID int64) bool {
	if sess.IsAdmin() {
		return true
	}
	lesson, err := h.store.GetLesson(ctx, lessonID)
	if err != nil {
		h.logger.Error("Failed to get lesson", zap.Int64("lesson_id", lessonID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return false
	}
	if lesson != nil && lesson.InstructorID != sess.StaffID {
		h.sendError(ctx, b, chatID, service.ErrorMessage(service.ErrForbidden))
		return false
	}
	return true
}

// showSchedule отправляет текущий вид: неделя картинкой, день списком
func (h *Handlers) showSchedule(ctx context.Context, b *bot.Bot, chatID int64, sched *service.Scheduler, loadErr error) {
	if loadErr != nil {
		if msg := service.ErrorMessage(loadErr); msg != "" {
			h.sendError(ctx, b, chatID, msg)
		}
		return
	}

	lessons := sched.Lessons()
	labels, err := h.packages.ClientNames(ctx, packageIDs(lessons))
	if err != nil {
		h.logger.Warn("Failed to load client names", zap.Error(err))
	}

	from, _ := sched.Range()
	locale := sched.Session().Locale
	markup := h.navigation(sched.Mode())

	if sched.Mode() != service.ViewWeek {
		h.sendMessage(ctx, b, chatID, dayText(sched.Mode(), from, lessons, labels, locale), markup)
		return
	}

	png, err := h.renderWeek(sched, labels)
	if err == nil {
		err = h.sendPhoto(ctx, b, chatID, png, weekCaption(from, lessons), markup)
	}
	if err != nil {
		h.logger.Warn("Falling back to text week", zap.Error(err))
		h.sendMessage(ctx, b, chatID, weekText(from, lessons, labels, locale), markup)
	}
}

func packageIDs(lessons []*model.Lesson) []int64 {
	ids := make([]int64, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.PackageID)
	}
	return ids
}
