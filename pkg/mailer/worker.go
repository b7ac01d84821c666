package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tpl "github.com/oksasatya/clean-auth/pkg/mailer/templates"
)

// Disposition tells the consumer what to do with a delivery.
type Disposition int

const (
	Ack Disposition = iota
	// Drop discards a message that can never succeed.
	Drop
	// Requeue returns the message to the queue for another attempt.
	Requeue
)

var ErrEmptyJob = errors.New("email job has no recipient or body")

// ProcessJob decodes, renders and sends one queued EmailJob.
func ProcessJob(ctx context.Context, sender Sender, body []byte) (Disposition, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return Drop, fmt.Errorf("decode job: %w", err)
	}
	job.Normalize()

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := tpl.Render(job.Template, job.Data)
		if err != nil {
			return Drop, fmt.Errorf("render %s: %w", job.Template, err)
		}
		subject, text, html = s, t, h
	}
	if job.To == "" || (text == "" && html == "") {
		return Drop, ErrEmptyJob
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := sender.Send(c, job.To, subject, text, html); err != nil {
		return Requeue, fmt.Errorf("send: %w", err)
	}
	return Ack, nil
}
