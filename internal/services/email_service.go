package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"hatirlat/internal/config"
	"hatirlat/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends reminders through SendGrid
type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(cfg config.SendGridConfig) *EmailService {
	return &EmailService{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (s *EmailService) Channel() models.Channel { return models.ChannelEmail }

// Send emails one reminder occurrence to a single recipient
func (s *EmailService) Send(ctx context.Context, to models.Contact, msg Message) (map[string]any, error) {
	if to.Email == "" {
		return nil, fmt.Errorf("%w email", ErrNoAddress)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(to.Name, to.Email)
	subject := fmt.Sprintf("Hatırlatma: %s", msg.Title)
	plainContent := msg.Text()
	htmlContent := fmt.Sprintf("<p><strong>%s</strong></p><p>%s</p>",
		html.EscapeString(msg.Title),
		strings.ReplaceAll(html.EscapeString(msg.Body), "\n", "<br>"))

	message := mail.NewSingleEmail(from, subject, recipient, plainContent, htmlContent)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return map[string]any{"statusCode": response.StatusCode},
			fmt.Errorf("failed to send email to %s: %d", to.Email, response.StatusCode)
	}

	detail := map[string]any{"provider": "sendgrid", "statusCode": response.StatusCode}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		detail["messageId"] = ids[0]
	}
	return detail, nil
}
