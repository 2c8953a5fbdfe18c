package mailer

import (
	"context"

	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
)

type Message struct {
	To      string
	Subject string
	Html    string
}

// Mailer delivers a single rendered message, returning the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

func New(conf config.EmailConfig) Mailer {
	if !conf.Enabled {
		return DisabledMailer{}
	}
	return NewResendMailer(conf)
}

type DisabledMailer struct{}

func (DisabledMailer) Send(ctx context.Context, msg *Message) (string, error) {
	return "", common.ErrEmailDisabled
}
