package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hatirlat/internal/config"
	"hatirlat/internal/models"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioNotifier sends SMS or WhatsApp messages through Twilio
type TwilioNotifier struct {
	client  *twilio.RestClient
	channel models.Channel
	from    string
}

// NewTwilioNotifier returns a notifier for ch, which must be sms or whatsapp.
// The twilio client takes no context, so timeout caps each HTTP request instead.
func NewTwilioNotifier(cfg config.TwilioConfig, ch models.Channel, timeout time.Duration) *TwilioNotifier {
	from := cfg.FromNumber
	if ch == models.ChannelWhatsApp {
		from = whatsAppAddress(cfg.WhatsAppFrom)
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &TwilioNotifier{
		client:  client,
		channel: ch,
		from:    from,
	}
}

func (n *TwilioNotifier) Channel() models.Channel { return n.channel }

func (n *TwilioNotifier) Send(ctx context.Context, to models.Contact, msg Message) (map[string]any, error) {
	if to.Phone == "" {
		return nil, fmt.Errorf("%w %s", ErrNoAddress, n.channel)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recipient := to.Phone
	if n.channel == models.ChannelWhatsApp {
		recipient = whatsAppAddress(recipient)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(n.from)
	params.SetBody(msg.Text())

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return nil, fmt.Errorf("twilio %s: %w", n.channel, err)
	}

	detail := map[string]any{"provider": "twilio"}
	if resp.Sid != nil {
		detail["sid"] = *resp.Sid
	}
	if resp.Status != nil {
		detail["status"] = *resp.Status
	}
	return detail, nil
}

func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
