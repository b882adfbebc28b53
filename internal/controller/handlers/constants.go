package handlers

import "time"

const (
	// Лимит подписи к фото в Telegram
	captionMaxLength = 1024
	// Лимит текста сообщения
	messageMaxLength = 4096

	// Таймаут обработки одной команды
	commandTimeout = 20 * time.Second
)
