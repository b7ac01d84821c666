package helpers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBrokerGone = errors.New("broker gone")

// stallingChannel blocks the first publish until release is closed.
type stallingChannel struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (c *stallingChannel) IsClosed() bool { return false }
func (c *stallingChannel) Close() error   { return nil }

func (c *stallingChannel) PublishWithDeferredConfirmWithContext(_ context.Context, _, _ string, _, _ bool, _ amqp.Publishing) (*amqp.DeferredConfirmation, error) {
	c.mu.Lock()
	c.calls++
	n := c.calls
	c.mu.Unlock()

	c.entered <- struct{}{}
	if n == 1 {
		<-c.release
	}
	return nil, errBrokerGone
}

func TestPublishJSONDoesNotSerializeInFlightPublishes(t *testing.T) {
	ch := &stallingChannel{entered: make(chan struct{}, 2), release: make(chan struct{})}
	p := &RabbitPublisher{ch: ch, Queue: "emails"}
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- p.PublishJSON(ctx, map[string]string{"to": "a@x.com"}) }()
	<-ch.entered

	second := make(chan error, 1)
	go func() { second <- p.PublishJSON(ctx, map[string]string{"to": "b@x.com"}) }()

	select {
	case <-ch.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("second publish waited for the first one to finish")
	}
	require.ErrorIs(t, <-second, errBrokerGone)

	close(ch.release)
	assert.ErrorIs(t, <-first, errBrokerGone)
}

func TestPublishJSONRejectsUnencodableBody(t *testing.T) {
	p := &RabbitPublisher{ch: &stallingChannel{entered: make(chan struct{}, 1), release: make(chan struct{})}, Queue: "emails"}
	err := p.PublishJSON(context.Background(), make(chan int))
	assert.Error(t, err)
}
