package services

import (
	"context"
	"testing"
	"time"

	"hatirlat/internal/config"
	"hatirlat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioclient "github.com/twilio/twilio-go/client"
)

func TestNewNotifiersFallsBackToLog(t *testing.T) {
	n := NewNotifiers(config.Config{})
	require.Len(t, n, len(models.AllChannels))
	for _, ch := range models.AllChannels {
		assert.IsType(t, &LogNotifier{}, n[ch], "channel %s", ch)
		assert.Equal(t, ch, n[ch].Channel())
	}
}

func TestNewNotifiersUsesConfiguredProviders(t *testing.T) {
	n := NewNotifiers(config.Config{
		SendGrid: config.SendGridConfig{APIKey: "SG.test", FromEmail: "noreply@hatirlat.io"},
		Twilio:   config.TwilioConfig{AccountSID: "AC123", AuthToken: "secret", FromNumber: "+15550001111"},
	})
	assert.IsType(t, &EmailService{}, n[models.ChannelEmail])
	assert.IsType(t, &TwilioNotifier{}, n[models.ChannelSMS])
	assert.IsType(t, &LogNotifier{}, n[models.ChannelWhatsApp], "whatsapp needs its own sender")
	assert.IsType(t, &LogNotifier{}, n[models.ChannelPush])
}

func TestAddress(t *testing.T) {
	c := models.Contact{Email: "a@example.com", Phone: "+905551112233", TelegramChatID: 42}
	assert.Equal(t, "a@example.com", Address(c, models.ChannelEmail))
	assert.Equal(t, "+905551112233", Address(c, models.ChannelSMS))
	assert.Equal(t, "+905551112233", Address(c, models.ChannelWhatsApp))
	assert.Equal(t, "42", Address(c, models.ChannelPush))
	assert.Empty(t, Address(models.Contact{Email: "a@example.com"}, models.ChannelPush))
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(models.ChannelSMS)
	msg := Message{ReminderID: "rem1", Title: "Call mom"}

	_, err := n.Send(context.Background(), models.Contact{Email: "a@example.com"}, msg)
	assert.ErrorIs(t, err, ErrNoAddress)

	detail, err := n.Send(context.Background(), models.Contact{Phone: "+905551112233"}, msg)
	require.NoError(t, err)
	assert.Equal(t, "log", detail["provider"])
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "Title", Message{Title: "Title"}.Text())
	assert.Equal(t, "Title\n\nBody", Message{Title: "Title", Body: "Body"}.Text())
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+905551112233", whatsAppAddress("+905551112233"))
	assert.Equal(t, "whatsapp:+905551112233", whatsAppAddress("whatsapp:+905551112233"))
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC)
	_, err := s.Schedule("not a schedule", func() {})
	assert.Error(t, err)

	_, err = s.Schedule("@every 1m", func() {})
	require.NoError(t, err)
	s.Start()
	s.Stop()
}

func TestTwilioNotifierUsesSendTimeout(t *testing.T) {
	n := NewTwilioNotifier(config.TwilioConfig{AccountSID: "AC123", AuthToken: "secret", FromNumber: "+15550001111"}, models.ChannelSMS, 5*time.Second)
	base, ok := n.client.RequestHandler.Client.(*twilioclient.Client)
	require.True(t, ok)
	require.NotNil(t, base.HTTPClient)
	assert.Equal(t, 5*time.Second, base.HTTPClient.Timeout)
}
