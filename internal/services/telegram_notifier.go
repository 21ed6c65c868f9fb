package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hatirlat/internal/logger"
	"hatirlat/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier delivers push reminders as Telegram bot messages
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier authorizes the bot. The bot API takes no context, so
// timeout is set on its HTTP client.
func NewTelegramNotifier(token string, timeout time.Duration) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Info("Telegram bot authorized", "account", api.Self.UserName)
	return &TelegramNotifier{api: api}, nil
}

func (n *TelegramNotifier) Channel() models.Channel { return models.ChannelPush }

func (n *TelegramNotifier) Send(ctx context.Context, to models.Contact, msg Message) (map[string]any, error) {
	if to.TelegramChatID == 0 {
		return nil, fmt.Errorf("%w push", ErrNoAddress)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sent, err := n.api.Send(tgbotapi.NewMessage(to.TelegramChatID, "🔔 "+msg.Text()))
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return map[string]any{"provider": "telegram", "messageId": sent.MessageID}, nil
}
