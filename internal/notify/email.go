package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type EmailNotifier struct {
	fromName  string
	fromEmail string
	logger    *zap.Logger
	send      func(m *mail.SGMailV3) (status int, body string, err error)
}

func NewEmailNotifier(apiKey, fromEmail, fromName string, logger *zap.Logger) *EmailNotifier {
	client := sendgrid.NewSendClient(apiKey)
	return &EmailNotifier{
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    logger,
		send: func(m *mail.SGMailV3) (int, string, error) {
			resp, err := client.Send(m)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
	}
}

func (n *EmailNotifier) BookingConfirmed(ctx context.Context, c Confirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Customer.Email) == "" {
		return nil
	}

	html, err := HTML(c)
	if err != nil {
		return err
	}

	toName := strings.TrimSpace(c.Customer.FirstName + " " + c.Customer.LastName)
	message := mail.NewSingleEmail(
		mail.NewEmail(n.fromName, n.fromEmail),
		Subject(c),
		mail.NewEmail(toName, c.Customer.Email),
		PlainText(c),
		html,
	)

	status, body, err := n.send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", status, body)
	}

	n.logger.Info("confirmation email sent", zap.String("reference", c.Reference), zap.Int("status", status))
	return nil
}
