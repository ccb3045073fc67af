package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bookit/experience-booking/internal/domain"
	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelBooking_RestoresCapacity(t *testing.T) {
	st := setupStore()
	rec := &recorder{}
	svc := NewBookingService(st, rec, testLogger())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, bookingRequest("s-1", 2, "WELCOME20"))
	require.NoError(t, err)
	require.Equal(t, 6, bookedSlots(t, st, "s-1"))

	cancelled, err := svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.True(t, cancelled.TotalAmount.Equal(b.TotalAmount), "amounts are left untouched")
	assert.True(t, cancelled.DiscountAmount.Equal(b.DiscountAmount))
	assert.Equal(t, 4, bookedSlots(t, st, "s-1"))

	details, err := svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, details.Status)

	got := rec.all()
	require.Len(t, got, 2)
	assert.Equal(t, events.KindBookingCancelled, got[1].Kind)
	assert.Equal(t, 4, got[1].Slot.BookedSlots)
}

func TestCancelBooking_NotRepeatable(t *testing.T) {
	st := setupStore()
	svc := NewBookingService(st, nil, testLogger())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, bookingRequest("s-2", 3, ""))
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, b.ID)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
	assert.Equal(t, "booking not found or already cancelled", err.Error())
	assert.Equal(t, 0, bookedSlots(t, st, "s-2"))
}

func TestCancelBooking_Unknown(t *testing.T) {
	svc := NewBookingService(setupStore(), nil, testLogger())

	_, err := svc.CancelBooking(context.Background(), "missing")
	assert.True(t, domain.IsInvalidState(err))
}

func TestCancelBooking_ConcurrentCancelsReleaseOnce(t *testing.T) {
	st := setupStore()
	svc := NewBookingService(st, nil, testLogger())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, bookingRequest("s-2", 4, ""))
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CancelBooking(ctx, b.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 0, bookedSlots(t, st, "s-2"))
}

func TestCancelBooking_StorageFailureRollsBack(t *testing.T) {
	mem := setupStore()
	svc := NewBookingService(mem, nil, testLogger())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, bookingRequest("s-2", 2, ""))
	require.NoError(t, err)

	failing := NewBookingService(&failingStore{Store: mem, failUpdate: true}, nil, testLogger())
	_, err = failing.CancelBooking(ctx, b.ID)
	require.Error(t, err)
	assert.True(t, domain.IsInternal(err))

	details, err := svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, details.Status)
	assert.Equal(t, 2, bookedSlots(t, mem, "s-2"))
}
