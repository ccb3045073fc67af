package service

import (
	"context"

	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bookit/experience-booking/internal/service"

// BookingService defines the booking service interface
type BookingService interface {
	ListExperiences(ctx context.Context) ([]models.Experience, error)
	GetExperience(ctx context.Context, experienceID string) (*models.ExperienceDetails, error)
	GetExperienceSlots(ctx context.Context, experienceID, date string) ([]models.Slot, error)
	CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.BookingDetails, error)
	GetBookingsByEmail(ctx context.Context, email string) ([]models.BookingDetails, error)
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	PreviewPromo(ctx context.Context, code string, amount decimal.Decimal) (*models.PromoPreview, error)
	ListPromoCodes(ctx context.Context) ([]models.PromoCode, error)
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	store     store.Store
	publisher events.Publisher
	log       logrus.FieldLogger
	tracer    trace.Tracer
	newID     func() string
}

// Option configures the booking service
type Option func(*bookingServiceImpl)

// WithIDGenerator overrides how booking ids are generated
func WithIDGenerator(newID func() string) Option {
	return func(s *bookingServiceImpl) { s.newID = newID }
}

// NewBookingService creates a new BookingService. publisher receives an
// event after every committed booking or cancellation and may be nil.
func NewBookingService(st store.Store, publisher events.Publisher, log logrus.FieldLogger, opts ...Option) BookingService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	svc := &bookingServiceImpl{
		store:     st,
		publisher: publisher,
		log:       log.WithField("component", "booking-service"),
		tracer:    otel.Tracer(tracerName),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// publish runs after commit; a failed delivery never undoes the booking
func (s *bookingServiceImpl) publish(ctx context.Context, kind events.Kind, b models.Booking, slot models.Slot) {
	ev := events.NewBookingEvent(kind, b, slot)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event_id":   ev.ID,
			"event":      kind,
			"booking_id": b.ID,
		}).Warn("failed to publish booking event")
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
