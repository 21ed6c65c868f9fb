package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hatirlat/internal/config"
	"hatirlat/internal/logger"
	"hatirlat/internal/models"
)

// ErrNoAddress is returned when a recipient has no address for the channel
var ErrNoAddress = errors.New("recipient has no address for channel")

// Message is one reminder occurrence rendered for delivery
type Message struct {
	ReminderID string
	Title      string
	Body       string
	Occurrence time.Time
}

// Text renders the message as plain text
func (m Message) Text() string {
	if m.Body == "" {
		return m.Title
	}
	return fmt.Sprintf("%s\n\n%s", m.Title, m.Body)
}

// Notifier delivers messages over one channel. The returned detail is stored on the delivery row.
type Notifier interface {
	Channel() models.Channel
	Send(ctx context.Context, to models.Contact, msg Message) (map[string]any, error)
}

// Notifiers maps each channel to its notifier
type Notifiers map[models.Channel]Notifier

// NewNotifiers builds a notifier per channel from cfg. Channels without provider
// credentials fall back to a LogNotifier.
func NewNotifiers(cfg config.Config) Notifiers {
	n := Notifiers{}
	for _, ch := range models.AllChannels {
		n[ch] = NewLogNotifier(ch)
	}

	if cfg.SendGrid.APIKey != "" && cfg.SendGrid.FromEmail != "" {
		n[models.ChannelEmail] = NewEmailService(cfg.SendGrid)
	}
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		if cfg.Twilio.FromNumber != "" {
			n[models.ChannelSMS] = NewTwilioNotifier(cfg.Twilio, models.ChannelSMS, cfg.DispatchTimeout)
		}
		if cfg.Twilio.WhatsAppFrom != "" {
			n[models.ChannelWhatsApp] = NewTwilioNotifier(cfg.Twilio, models.ChannelWhatsApp, cfg.DispatchTimeout)
		}
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := NewTelegramNotifier(cfg.Telegram.BotToken, cfg.DispatchTimeout)
		if err != nil {
			logger.Warn("Telegram notifier unavailable, push falls back to log", "err", err)
		} else {
			n[models.ChannelPush] = tg
		}
	}

	for ch, notifier := range n {
		logger.Debug("Notifier configured", "channel", ch, "type", fmt.Sprintf("%T", notifier))
	}
	return n
}

// Address returns the recipient address used for ch
func Address(to models.Contact, ch models.Channel) string {
	switch ch {
	case models.ChannelEmail:
		return to.Email
	case models.ChannelSMS, models.ChannelWhatsApp:
		return to.Phone
	case models.ChannelPush:
		if to.TelegramChatID != 0 {
			return fmt.Sprintf("%d", to.TelegramChatID)
		}
	}
	return ""
}

// LogNotifier only logs the message. It stands in for unconfigured providers.
type LogNotifier struct {
	channel models.Channel
}

func NewLogNotifier(ch models.Channel) *LogNotifier {
	return &LogNotifier{channel: ch}
}

func (n *LogNotifier) Channel() models.Channel { return n.channel }

func (n *LogNotifier) Send(ctx context.Context, to models.Contact, msg Message) (map[string]any, error) {
	addr := Address(to, n.channel)
	if addr == "" {
		return nil, fmt.Errorf("%w %s", ErrNoAddress, n.channel)
	}
	logger.Info("Reminder delivered to log", "channel", n.channel, "to", addr, "reminder", msg.ReminderID, "title", msg.Title)
	return map[string]any{"provider": "log"}, nil
}
