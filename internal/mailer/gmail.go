package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/outreachly/outreach-backend/internal/config"
)

// GmailSender delivers through the Gmail API
type GmailSender struct {
	service       *gmail.Service
	senderAddress string
	senderName    string
}

// NewGmailSender authenticates with a service account key (domain-wide
// delegation, impersonating the sender) when one is configured, and with
// an OAuth2 client plus refresh token otherwise.
func NewGmailSender(ctx context.Context, cfg config.MailConfig) (*GmailSender, error) {
	sender := cfg.Sender()
	if sender == "" {
		return nil, fmt.Errorf("gmail: sender address is required")
	}

	var opt option.ClientOption
	switch {
	case cfg.Gmail.CredentialsJSON != "":
		jwtConfig, err := google.JWTConfigFromJSON([]byte(cfg.Gmail.CredentialsJSON), gmail.GmailSendScope)
		if err != nil {
			return nil, fmt.Errorf("gmail: failed to parse credentials: %w", err)
		}
		jwtConfig.Subject = sender
		opt = option.WithHTTPClient(jwtConfig.Client(ctx))
	case cfg.Gmail.RefreshToken != "":
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.Gmail.ClientID,
			ClientSecret: cfg.Gmail.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailSendScope},
		}
		opt = option.WithHTTPClient(oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.Gmail.RefreshToken}))
	default:
		return nil, fmt.Errorf("gmail: credentials JSON or refresh token is required")
	}

	svc, err := gmail.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSender{
		service:       svc,
		senderAddress: sender,
		senderName:    cfg.SenderName,
	}, nil
}

// Send sends an email via the Gmail API.
func (g *GmailSender) Send(ctx context.Context, msg Message) error {
	raw := buildMIME(g.from(), msg)

	_, err := g.service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail: failed to send email: %w", err)
	}
	return nil
}

func (g *GmailSender) from() string {
	if g.senderName == "" {
		return g.senderAddress
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", g.senderName), g.senderAddress)
}

// buildMIME renders a minimal RFC 5322 message; generated subjects may
// carry non-ASCII company names, so the subject is Q-encoded
func buildMIME(from string, msg Message) string {
	headers := []string{
		"From: " + from,
		"To: " + msg.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version: 1.0",
	}

	if msg.HTMLBody != "" && msg.TextBody != "" {
		boundary := "outreach_alt_boundary"
		return strings.Join(append(headers,
			"Content-Type: multipart/alternative; boundary="+boundary,
			"",
			"--"+boundary,
			"Content-Type: text/plain; charset=UTF-8",
			"",
			msg.TextBody,
			"--"+boundary,
			"Content-Type: text/html; charset=UTF-8",
			"",
			msg.HTMLBody,
			"--"+boundary+"--",
		), "\r\n")
	}

	contentType := "text/plain; charset=UTF-8"
	body := msg.TextBody
	if msg.HTMLBody != "" {
		contentType = "text/html; charset=UTF-8"
		body = msg.HTMLBody
	}
	return strings.Join(append(headers, "Content-Type: "+contentType, "", body), "\r\n")
}

var _ Sender = (*GmailSender)(nil)
