// Package mail delivers rendered digests through the Gmail API.
package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"newsdigest/internal/ports"
)

// GmailSender sends HTML mail as the authorized user.
type GmailSender struct {
	svc *gmail.Service
}

var _ ports.Mailer = (*GmailSender)(nil)

// NewGmailSender reads an OAuth token JSON file and builds the Gmail service.
func NewGmailSender(ctx context.Context, tokenFile string) (*GmailSender, error) {
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("parse gmail token: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(&token)))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}

	return &GmailSender{svc: svc}, nil
}

// Send builds an RFC 2822 HTML message and submits it via users.messages.send.
func (s *GmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s.svc == nil {
		return fmt.Errorf("gmail sender misconfigured")
	}

	raw := strings.Join([]string{
		"To: " + to,
		"Content-Type: text/html; charset=utf-8",
		"MIME-Version: 1.0",
		"Subject: " + subject,
		"",
		htmlBody,
	}, "\r\n")

	msg := &gmail.Message{
		Raw: base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(raw)),
	}

	if _, err := s.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
