package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type SMSNotifier struct {
	from   string
	logger *zap.Logger
	create func(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

func NewSMSNotifier(accountSID, authToken, from string, logger *zap.Logger) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return &SMSNotifier{
		from:   from,
		logger: logger,
		create: client.Api.CreateMessage,
	}
}

// BookingConfirmed texts the customer. Numbers must be in E.164 form;
// others are skipped with a warning.
func (n *SMSNotifier) BookingConfirmed(ctx context.Context, c Confirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := E164(c.Customer.Phone)
	if to == "" {
		n.logger.Warn("skipping confirmation sms, phone is not in E.164 form", zap.String("reference", c.Reference))
		return nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(SMSBody(c))

	resp, err := n.create(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	n.logger.Info("confirmation sms sent", zap.String("reference", c.Reference), zap.String("sid", sid))
	return nil
}

// E164 strips formatting from a phone number. It returns "" unless the
// number starts with '+'.
func E164(phone string) string {
	phone = strings.TrimSpace(phone)
	if !strings.HasPrefix(phone, "+") {
		return ""
	}
	var b strings.Builder
	b.WriteByte('+')
	for _, r := range phone[1:] {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() < 8 {
		return ""
	}
	return b.String()
}
