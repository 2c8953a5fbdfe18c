package mailer

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/t2bot/transfer-repo/common/config"
)

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(conf config.EmailConfig) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(conf.ApiKey),
		from:   conf.From,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg *Message) (string, error) {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.Html,
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "resend rejected message")
	}
	return sent.Id, nil
}
