// Package events describes what happened to a booking after its transaction
// committed, and fans the news out to interested publishers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bookit/experience-booking/internal/models"
	"github.com/google/uuid"
)

// Kind doubles as the message routing key
type Kind string

const (
	KindBookingCreated   Kind = "booking.created"
	KindBookingCancelled Kind = "booking.cancelled"
)

// Kinds lists every event kind, e.g. for queue bindings
func Kinds() []string {
	return []string{string(KindBookingCreated), string(KindBookingCancelled)}
}

// BookingEvent carries the booking and the slot state after the change
type BookingEvent struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Booking    models.Booking `json:"booking"`
	Slot       models.Slot    `json:"slot"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewBookingEvent stamps a new event with an id and the current time
func NewBookingEvent(kind Kind, b models.Booking, s models.Slot) BookingEvent {
	return BookingEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Booking:    b,
		Slot:       s,
		OccurredAt: time.Now().UTC(),
	}
}

// Decode parses a BookingEvent from a message body
func Decode(body []byte) (BookingEvent, error) {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if ev.ID == "" || ev.Booking.ID == "" {
		return BookingEvent{}, errors.New("decode booking event: missing id")
	}
	return ev, nil
}

// Publisher delivers booking events
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(ctx context.Context, ev BookingEvent) error

func (f PublisherFunc) Publish(ctx context.Context, ev BookingEvent) error {
	return f(ctx, ev)
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, BookingEvent) error { return nil }

// Fanout publishes to every publisher and joins their errors
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev BookingEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
