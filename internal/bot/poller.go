package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const pollTimeoutSeconds = 60

// Updater is the long-polling subset of *tgbotapi.BotAPI.
type Updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poll feeds long-polled updates to the handler until ctx is cancelled.
// Updates are handled one at a time in arrival order.
func Poll(ctx context.Context, api Updater, handler *Handler, logger *zap.Logger) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	u.AllowedUpdates = []string{"message", "pre_checkout_query"}

	updates := api.GetUpdatesChan(u)
	logger.Info("Bot polling started")

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			logger.Info("Bot polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			handler.HandleUpdate(ctx, update)
		}
	}
}
