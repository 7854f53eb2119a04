package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger delivers one text message to a chat. Chat is a numeric chat id or an
// @channel username.
type Messenger interface {
	Send(ctx context.Context, chat string, text string) error
}

// BotSender is the subset of *tgbotapi.BotAPI used for sending messages.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramMessenger sends Markdown messages through the Bot API.
type TelegramMessenger struct {
	bot BotSender
}

func NewTelegramMessenger(bot BotSender) *TelegramMessenger {
	return &TelegramMessenger{bot: bot}
}

func (m *TelegramMessenger) Send(ctx context.Context, chat string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := NewMessage(chat, text)
	if err != nil {
		return err
	}
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := m.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// NewMessage addresses a message to a numeric chat id or an @channel username.
func NewMessage(chat string, text string) (tgbotapi.MessageConfig, error) {
	chat = strings.TrimSpace(chat)
	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text), nil
	}
	if strings.HasPrefix(chat, "@") && len(chat) > 1 {
		return tgbotapi.NewMessageToChannel(chat, text), nil
	}
	return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat reference %q", chat)
}

// NopMessenger discards messages; used when no bot token is configured.
type NopMessenger struct{}

func (NopMessenger) Send(context.Context, string, string) error { return nil }
