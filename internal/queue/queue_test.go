package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testEvent() BookingConfirmedEvent {
	return BookingConfirmedEvent{
		References:  []string{"ref-1", "ref-2"},
		UserID:      42,
		MovieID:     3,
		MovieName:   "Dune",
		TheaterID:   7,
		TheaterName: "Hall 1",
		ShowTime:    time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC),
		Seats:       []string{"A1", "A2"},
		Total:       400,
		ConfirmedAt: time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC),
	}
}

func TestConsumerHandle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := NewConsumer("amqp://unused", zap.New(core))

	body, err := json.Marshal(testEvent())
	require.NoError(t, err)
	require.NoError(t, c.handle(body))

	entries := logs.FilterLoggerName("ledger").FilterMessage("booking confirmed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "ref-1", entries[0].ContextMap()["reference"])
	assert.Equal(t, "A2", entries[1].ContextMap()["seat"])
	assert.Equal(t, 1, logs.FilterMessage("payment settled").Len())
}

func TestConsumerHandleRejectsMalformed(t *testing.T) {
	c := NewConsumer("amqp://unused", zap.NewNop())

	assert.Error(t, c.handle([]byte("{")))

	ev := testEvent()
	ev.Seats = ev.Seats[:1]
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Error(t, c.handle(body))
}

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	failNext  error
	closed    bool
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { f.closed = true; return nil }

func TestPublisher(t *testing.T) {
	var dials int
	channels := []*fakeChannel{{failNext: errors.New("channel closed")}, {}}
	p := &Publisher{dial: func() (amqpChannel, func() error, error) {
		ch := channels[dials]
		dials++
		return ch, func() error { return nil }, nil
	}}
	ctx := context.Background()

	err := p.PublishBookingConfirmed(ctx, testEvent())
	require.Error(t, err)
	assert.True(t, channels[0].closed)

	require.NoError(t, p.PublishBookingConfirmed(ctx, testEvent()))
	require.NoError(t, p.PublishBookingConfirmed(ctx, testEvent()))
	assert.Equal(t, 2, dials)
	assert.Equal(t, []string{BookingConfirmedQueue}, channels[1].declared)
	require.Len(t, channels[1].published, 2)

	msg := channels[1].published[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	var got BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, testEvent(), got)
}
