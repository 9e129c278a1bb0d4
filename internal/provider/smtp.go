package provider

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig carries the connection settings for the mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers email via SMTP using go-mail. A fresh client is
// dialed per send; delivery volume is bounded upstream by the worker
// pool and the email rate limiter.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, html)

	c, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	return c.DialAndSendWithContext(ctx, m)
}

// compile-time check that SMTPSender implements MailSender
var _ MailSender = (*SMTPSender)(nil)
