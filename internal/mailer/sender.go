package mailer

import (
	"context"
	"fmt"

	"github.com/outreachly/outreach-backend/internal/config"
)

// Sender delivers one fully composed message. Implementations report
// success or failure only; there is no partial delivery state.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message represents an email message to be sent.
type Message struct {
	To       string // recipient email address
	Subject  string // email subject
	HTMLBody string // HTML email body
	TextBody string // optional plain-text alternative
}

// New builds the Sender selected by cfg.Provider
func New(ctx context.Context, cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case "", "smtp":
		s, err := NewSMTPSender(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "gmail":
		s, err := NewGmailSender(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
}
