package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bookit/experience-booking/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	ev := NewBookingEvent(KindBookingCreated,
		models.Booking{ID: "b-1", Participants: 2, TotalAmount: decimal.NewFromInt(1698)},
		models.Slot{ID: "s-1", TotalSlots: 6, BookedSlots: 6},
	)
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	got, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, KindBookingCreated, got.Kind)
	assert.Equal(t, "b-1", got.Booking.ID)
	assert.True(t, got.Booking.TotalAmount.Equal(decimal.NewFromInt(1698)))
	assert.Equal(t, 6, got.Slot.BookedSlots)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"kind":"booking.created"}`))
	assert.Error(t, err)
}

func TestFanout(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	f := Fanout{
		PublisherFunc(func(ctx context.Context, ev BookingEvent) error {
			calls = append(calls, "first")
			return boom
		}),
		nil,
		PublisherFunc(func(ctx context.Context, ev BookingEvent) error {
			calls = append(calls, "second")
			return nil
		}),
	}

	err := f.Publish(context.Background(), BookingEvent{ID: "e-1"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.NoError(t, Fanout{Nop{}}.Publish(context.Background(), BookingEvent{}))
}
