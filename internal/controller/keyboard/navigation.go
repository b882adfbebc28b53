// Package keyboard строит inline-клавиатуры бота.
package keyboard

import (
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// Callback data навигации по расписанию
const (
	SchedulePrefix = "sched:"

	SchedulePrev  = "sched:prev"
	ScheduleNext  = "sched:next"
	ScheduleToday = "sched:today"
	ScheduleDay   = "sched:day"
	ScheduleWeek  = "sched:week"
)

func button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// ScheduleNavigation строит клавиатуру под видом расписания.
// В виде "сегодня" листать нельзя
func ScheduleNavigation(mode service.ViewMode) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	if mode != service.ViewToday {
		rows = append(rows, []models.InlineKeyboardButton{
			button("⬅️", SchedulePrev),
			button("📍 Сегодня", ScheduleToday),
			button("➡️", ScheduleNext),
		})
	}

	switch mode {
	case service.ViewWeek:
		rows = append(rows, []models.InlineKeyboardButton{button("📅 По дням", ScheduleDay)})
	default:
		rows = append(rows, []models.InlineKeyboardButton{button("🗓 Неделя", ScheduleWeek)})
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
