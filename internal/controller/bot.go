package controller

import (
	"context"

	"github.com/Freeeeeet/autoschool_bot/internal/controller/handlers"
	"github.com/Freeeeeet/autoschool_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/autoschool_bot/internal/controller/state"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	store service.Store,
	registry *state.Registry,
	opts service.Options,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(store, registry, opts, logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)

	// Расписание
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/today", bot.MatchTypeExact, c.handlers.HandleToday)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/day", bot.MatchTypePrefix, c.handlers.HandleDay)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/week", bot.MatchTypePrefix, c.handlers.HandleWeek)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/next", bot.MatchTypeExact, c.handlers.HandleNext)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/prev", bot.MatchTypeExact, c.handlers.HandlePrev)

	// Занятия и пакеты
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/done", bot.MatchTypePrefix, c.handlers.HandleDone)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypePrefix, c.handlers.HandleCancelLesson)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/client", bot.MatchTypePrefix, c.handlers.HandleClient)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/ledger", bot.MatchTypePrefix, c.handlers.HandleLedger)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/log", bot.MatchTypePrefix, c.handlers.HandleLog)

	// Кнопки навигации
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, keyboard.SchedulePrefix, bot.MatchTypePrefix, c.handlers.HandleCallback)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "today", Description: "📍 Занятия на сегодня"},
		{Command: "day", Description: "📅 Расписание дня"},
		{Command: "week", Description: "🗓 Расписание недели"},
		{Command: "next", Description: "➡️ Следующий день или неделя"},
		{Command: "prev", Description: "⬅️ Предыдущий день или неделя"},
		{Command: "done", Description: "✅ Отметить занятие проведённым"},
		{Command: "cancel", Description: "❌ Отменить занятие"},
		{Command: "client", Description: "👤 Карточка ученика"},
		{Command: "ledger", Description: "💼 Баланс пакета"},
		{Command: "log", Description: "📝 Отметить занятие без записи"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
