package mailer

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/outreachly/outreach-backend/internal/config"
)

// SMTPSender delivers through an authenticated SMTP relay
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

// NewSMTPSender builds a sender from mail settings. UseSSL selects
// implicit TLS (port 465); otherwise STARTTLS is negotiated whenever the
// server offers it, verified against the configured host when UseTLS is set.
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("smtp: server is required")
	}
	if cfg.Sender() == "" {
		return nil, fmt.Errorf("smtp: sender address is required")
	}

	d := gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.UseSSL
	if cfg.UseTLS || cfg.UseSSL {
		d.TLSConfig = &tls.Config{ServerName: cfg.Server, MinVersion: tls.VersionTLS12}
	}

	return &SMTPSender{
		dialer: d,
		from:   cfg.Sender(),
		name:   cfg.SenderName,
	}, nil
}

// Send sends an email to msg.To.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	if s.name != "" {
		m.SetAddressHeader("From", s.from, s.name)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: failed to send email: %w", err)
	}
	return nil
}

var _ Sender = (*SMTPSender)(nil)
