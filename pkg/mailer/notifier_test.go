package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tpl "github.com/oksasatya/clean-auth/pkg/mailer/templates"
)

type fakePublisher struct {
	jobs []EmailJob
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body.(EmailJob))
	return nil
}

type fakeSender struct {
	to, subject, text, html string
	err                     error
}

func (s *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

func TestQueueNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := &QueueNotifier{Pub: pub, AppName: "Acme", ExpiresIn: 5 * time.Minute}

	require.NoError(t, n.SendConfirmationEmail(context.Background(), "a@b.test", "ABC123"))
	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, "a@b.test", job.To)
	assert.Equal(t, tpl.ConfirmEmail, job.Template)
	assert.Equal(t, "ABC123", job.Data["Code"])
}

func TestQueueNotifierPublishError(t *testing.T) {
	n := &QueueNotifier{Pub: &fakePublisher{err: errors.New("broker down")}}
	err := n.SendConfirmationEmail(context.Background(), "a@b.test", "ABC123")
	assert.ErrorContains(t, err, "broker down")
}

func TestMailgunNotifierRendersTemplate(t *testing.T) {
	s := &fakeSender{}
	n := &MailgunNotifier{Sender: s, AppName: "Acme", ExpiresIn: 5 * time.Minute}

	require.NoError(t, n.SendConfirmationEmail(context.Background(), "a@b.test", "XYZ789"))
	assert.Equal(t, "a@b.test", s.to)
	assert.Equal(t, "Acme - Email Confirmation", s.subject)
	assert.Contains(t, s.text, "XYZ789")
	assert.Contains(t, s.text, "5 minutes")
	assert.Contains(t, s.html, "XYZ789")
}

func TestMailgunNotifierSendError(t *testing.T) {
	n := &MailgunNotifier{Sender: &fakeSender{err: errors.New("rejected")}}
	assert.Error(t, n.SendConfirmationEmail(context.Background(), "a@b.test", "XYZ789"))
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := &LogNotifier{Logger: logger}

	require.NoError(t, n.SendConfirmationEmail(context.Background(), "a@b.test", "CODE12"))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "CODE12", hook.LastEntry().Data["code"])
}

func TestEmailJobNormalize(t *testing.T) {
	job := EmailJob{To: "x@y.test"}
	job.Normalize()
	assert.Equal(t, "x@y.test", job.Data["Email"])

	job = EmailJob{To: "x@y.test", Data: map[string]any{"Email": "other@y.test"}}
	job.Normalize()
	assert.Equal(t, "other@y.test", job.Data["Email"])
}
