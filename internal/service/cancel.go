package service

import (
	"context"
	"errors"

	"github.com/bookit/experience-booking/internal/domain"
	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/store"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errNotCancellable = domain.InvalidStateError{Resource: "booking", Msg: "not found or already cancelled"}

// CancelBooking marks a confirmed booking cancelled and gives its
// participants back to the slot in the same transaction.
func (s *bookingServiceImpl) CancelBooking(ctx context.Context, bookingID string) (booking *models.Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CancelBooking", trace.WithAttributes(
		attribute.String("booking.id", bookingID),
	))
	defer func() { endSpan(span, err) }()

	var (
		cancelled models.Booking
		slot      models.Slot
	)
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return errNotCancellable
			}
			return domain.Internal("failed to get booking", err)
		}
		if b.Status != models.BookingStatusConfirmed {
			return errNotCancellable
		}

		sl, err := tx.GetSlotForUpdate(ctx, b.SlotID)
		if err != nil {
			return notFoundOr(err, "slot", b.SlotID, "failed to lock slot")
		}

		if err := tx.UpdateBookingStatus(ctx, b.ID, models.BookingStatusCancelled); err != nil {
			return domain.Internal("failed to cancel booking", err)
		}
		if err := tx.UpdateSlotBookedCount(ctx, b.SlotID, -b.Participants); err != nil {
			return domain.Internal("failed to release slot", err)
		}

		cancelled = *b
		cancelled.Status = models.BookingStatusCancelled
		slot = *sl
		slot.BookedSlots -= b.Participants
		return nil
	})
	if err != nil {
		err = domain.Internal("failed to cancel booking", err)
		s.log.WithError(err).WithField("booking_id", bookingID).Info("cancellation rejected")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":   cancelled.ID,
		"slot_id":      cancelled.SlotID,
		"participants": cancelled.Participants,
	}).Info("booking cancelled")

	s.publish(ctx, events.KindBookingCancelled, cancelled, slot)
	return &cancelled, nil
}
