package activities

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/store"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// NoticeInput identifies the booking a notice is about
type NoticeInput struct {
	EventID   string `json:"eventId"`
	BookingID string `json:"bookingId"`
}

// NoticeOutput reports whether a notice went out
type NoticeOutput struct {
	Sent      bool   `json:"sent"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Activities holds the dependencies of the notification activities
type Activities struct {
	bookings store.BookingReader
	mailer   Mailer
}

// NewActivities creates a new Activities instance
func NewActivities(bookings store.BookingReader, mailer Mailer) *Activities {
	return &Activities{bookings: bookings, mailer: mailer}
}

// SendBookingConfirmation tells the customer their booking is confirmed.
// Bookings cancelled before the notice goes out are skipped.
func (a *Activities) SendBookingConfirmation(ctx context.Context, input NoticeInput) (*NoticeOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Sending booking confirmation", "bookingId", input.BookingID, "eventId", input.EventID)

	b, err := a.loadBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusConfirmed {
		logger.Info("Skipping confirmation", "bookingId", b.ID, "status", b.Status)
		return &NoticeOutput{Reason: fmt.Sprintf("booking is %s", b.Status)}, nil
	}

	return a.send(ctx, confirmationNotice(b))
}

// SendCancellationNotice tells the customer their booking was cancelled
func (a *Activities) SendCancellationNotice(ctx context.Context, input NoticeInput) (*NoticeOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Sending cancellation notice", "bookingId", input.BookingID, "eventId", input.EventID)

	b, err := a.loadBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusCancelled {
		logger.Info("Skipping cancellation notice", "bookingId", b.ID, "status", b.Status)
		return &NoticeOutput{Reason: fmt.Sprintf("booking is %s", b.Status)}, nil
	}

	return a.send(ctx, cancellationNotice(b))
}

func (a *Activities) loadBooking(ctx context.Context, id string) (*models.BookingDetails, error) {
	b, err := a.bookings.GetBookingDetails(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("booking %s not found", id), "BookingNotFound", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return b, nil
}

func (a *Activities) send(ctx context.Context, n Notice) (*NoticeOutput, error) {
	ref, err := a.mailer.Send(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to send notice: %w", err)
	}
	activity.GetLogger(ctx).Info("Notice sent", "to", n.To, "reference", ref)
	return &NoticeOutput{Sent: true, Reference: ref}, nil
}
