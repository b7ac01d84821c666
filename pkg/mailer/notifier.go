package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	tpl "github.com/oksasatya/clean-auth/pkg/mailer/templates"
)

// Publisher enqueues a JSON message.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// QueueNotifier hands confirmation mails to the email worker through RabbitMQ.
// A nil error means the job was accepted by the broker, not that it was delivered.
type QueueNotifier struct {
	Pub       Publisher
	AppName   string
	ExpiresIn time.Duration
}

func (n *QueueNotifier) SendConfirmationEmail(ctx context.Context, email, code string) error {
	data := tpl.NewConfirmEmailData(n.AppName, email, code, tpl.WithTime(time.Now()), tpl.WithExpiresIn(n.ExpiresIn))
	job := EmailJob{To: email, Template: tpl.ConfirmEmail, Data: tpl.ToMap(data)}
	if err := n.Pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("enqueue confirmation email: %w", err)
	}
	return nil
}

// MailgunNotifier renders and sends confirmation mails synchronously.
type MailgunNotifier struct {
	Sender    Sender
	AppName   string
	ExpiresIn time.Duration
}

func (n *MailgunNotifier) SendConfirmationEmail(ctx context.Context, email, code string) error {
	data := tpl.NewConfirmEmailData(n.AppName, email, code, tpl.WithTime(time.Now()), tpl.WithExpiresIn(n.ExpiresIn))
	subject, text, html, err := tpl.Render(tpl.ConfirmEmail, data)
	if err != nil {
		return err
	}
	if err := n.Sender.Send(ctx, email, subject, text, html); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

// LogNotifier writes the code to the log instead of sending mail. Development only.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) SendConfirmationEmail(_ context.Context, email, code string) error {
	n.Logger.WithFields(logrus.Fields{"email": email, "code": code}).Info("confirmation code (mail sending disabled)")
	return nil
}
