package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends mail through the Mailgun HTTP API.
type Mailgun struct {
	Sender  string
	Timeout time.Duration
	client  *mg.MailgunImpl
}

type MailgunOption func(*Mailgun)

// WithAPIBase selects the API region, e.g. mg.APIBaseEU. Empty keeps the default.
func WithAPIBase(base string) MailgunOption {
	return func(m *Mailgun) {
		if base != "" {
			m.client.SetAPIBase(base)
		}
	}
}

func WithTimeout(d time.Duration) MailgunOption {
	return func(m *Mailgun) { m.Timeout = d }
}

func NewMailgun(domain, apiKey, sender string, opts ...MailgunOption) *Mailgun {
	m := &Mailgun{Sender: sender, Timeout: 10 * time.Second, client: mg.NewMailgun(domain, apiKey)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send sends one message. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if to == "" {
		return errors.New("mailgun: empty recipient")
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
