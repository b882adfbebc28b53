package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// clientCard показывает досье клиента в чате сотрудника
type clientCard struct {
	bot       messageSender
	chatID    int64
	directory *service.DirectoryService
	packages  *service.PackageService
	logger    *zap.Logger
}

func (c *clientCard) ShowClient(ctx context.Context, clientID int64) error {
	client, err := c.directory.GetClient(ctx, clientID)
	if err != nil {
		return err
	}
	packages, err := c.packages.ListByClient(ctx, clientID)
	if err != nil {
		c.logger.Warn("Failed to list client packages", zap.Int64("client_id", clientID), zap.Error(err))
		packages = nil
	}

	if _, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: c.chatID,
		Text:   clientText(client, packages),
	}); err != nil {
		return fmt.Errorf("send client card: %w", err)
	}
	return nil
}

var _ service.ClientViewer = (*clientCard)(nil)
