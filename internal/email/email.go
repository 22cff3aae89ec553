// Package email delivers notification e-mails through Resend.
package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
)

// ErrNoRecipient is returned for a message without addresses.
var ErrNoRecipient = errors.New("email has no recipient")

// Message is one e-mail. Text is used when HTML is empty.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

// Sender sends a message and returns the provider id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// emailAPI is the part of the Resend SDK used here.
type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Client wraps the Resend client. Without an API key it only logs.
type Client struct {
	emails emailAPI
	from   string
	log    zerolog.Logger
}

var _ Sender = (*Client)(nil)

// NewClient creates a Client from cfg.
func NewClient(cfg config.EmailConfig, log zerolog.Logger) *Client {
	c := &Client{from: cfg.From, log: log.With().Str("component", "email").Logger()}
	if cfg.ResendAPIKey != "" {
		c.emails = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return c
}

func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipient
	}
	if c.emails == nil {
		c.log.Warn().Strs("to", msg.To).Str("subject", msg.Subject).Msg("resend api key not set, email dropped")
		return "", nil
	}
	resp, err := c.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	c.log.Info().Strs("to", msg.To).Str("email_id", resp.Id).Msg("email sent")
	return resp.Id, nil
}
