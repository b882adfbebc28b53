package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// requireStaff определяет сотрудника по Telegram ID.
// Возвращает сессию и true если OK
func (h *Handlers) requireStaff(ctx context.Context, b *bot.Bot, chatID int64, from *models.User) (service.Session, bool) {
	if from == nil {
		return service.Session{}, false
	}

	sess, err := h.staff.Identify(ctx, from.ID, language.Make(from.LanguageCode))
	switch {
	case err == nil:
		return sess, true
	case errors.Is(err, service.ErrNotFound):
		h.registry.Drop(from.ID)
		h.sendError(ctx, b, chatID, fmt.Sprintf(
			"❌ Вы не зарегистрированы как сотрудник автошколы.\n\nПередайте администратору ваш Telegram ID: %d", from.ID))
	case errors.Is(err, service.ErrForbidden):
		h.registry.Drop(from.ID)
		h.sendError(ctx, b, chatID, "❌ Доступ отключён. Обратитесь к администратору.")
	default:
		h.logger.Error("Failed to identify staff", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
	}
	return service.Session{}, false
}

// scheduler возвращает открытый вид сотрудника или создаёт новый
func (h *Handlers) scheduler(b *bot.Bot, telegramID, chatID int64, sess service.Session) *service.Scheduler {
	return h.registry.Open(telegramID, sess, func() *service.Scheduler {
		viewer := &clientCard{bot: b, chatID: chatID, directory: h.directory, packages: h.packages, logger: h.logger}
		return service.NewScheduler(h.store, h.store, h.ledgers, viewer, sess, h.opts, h.logger)
	})
}

func (h *Handlers) sessionLogger(sess service.Session) *service.SessionLogger {
	return service.NewSessionLogger(h.store, h.store, h.ledgers, sess, h.opts, h.logger)
}

// withTimeout ограничивает время обработки команды
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, commandTimeout)
}
