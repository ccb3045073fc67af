package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []recordedPublish
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, recordedPublish{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, exchange: "booking.exchange"}

	ev := events.NewBookingEvent(events.KindBookingCancelled,
		models.Booking{ID: "b-1", Participants: 2},
		models.Slot{ID: "s-1", TotalSlots: 6, BookedSlots: 4},
	)
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "booking.exchange", got.exchange)
	assert.Equal(t, "booking.cancelled", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	decoded, err := events.Decode(got.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, "b-1", decoded.Booking.ID)
}

func TestPublisher_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	p := &Publisher{ch: &fakeChannel{err: boom}, exchange: "booking.exchange"}

	err := p.Publish(context.Background(), events.BookingEvent{ID: "e-1", Kind: events.KindBookingCreated})
	assert.ErrorIs(t, err, boom)
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch}

	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
