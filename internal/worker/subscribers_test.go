package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/events"
)

type countingSubscriber struct {
	seen int
}

func (c *countingSubscriber) RegisterHandlers(d events.Dispatcher) {
	d.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
		c.seen++
		return nil
	})
}

func TestStartSubscribersRegistersHandlers(t *testing.T) {
	d := events.NewInMemoryDispatcher(zap.NewNop())
	first, second := &countingSubscriber{}, &countingSubscriber{}

	assert.Equal(t, 2, StartSubscribers(d, zap.NewNop(), first, second))
	assert.NoError(t, d.Publish(context.Background(), events.Event{Type: events.EventTicketCreated}))
	assert.Equal(t, 1, first.seen)
	assert.Equal(t, 1, second.seen)
}

func TestStartSubscribersWithoutDispatcher(t *testing.T) {
	assert.Equal(t, 0, StartSubscribers(nil, nil, &countingSubscriber{}))
}
