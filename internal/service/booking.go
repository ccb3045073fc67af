package service

import (
	"context"
	"errors"

	"github.com/bookit/experience-booking/internal/domain"
	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/promo"
	"github.com/bookit/experience-booking/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CreateBooking reserves participants on a slot and records a confirmed
// booking. The capacity check, pricing, insert and counter update commit
// together or not at all.
func (s *bookingServiceImpl) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (booking *models.Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CreateBooking", trace.WithAttributes(
		attribute.String("experience.id", req.ExperienceID),
		attribute.String("slot.id", req.SlotID),
		attribute.Int("booking.participants", req.Participants),
	))
	defer func() { endSpan(span, err) }()

	if req.Participants < 1 {
		return nil, domain.ValidationError{Field: "participants", Msg: "must be at least 1"}
	}

	var (
		created models.Booking
		slot    models.Slot
	)
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		exp, err := tx.GetExperience(ctx, req.ExperienceID)
		if err != nil {
			return notFoundOr(err, "experience", req.ExperienceID, "failed to get experience")
		}

		sl, err := tx.GetSlotForUpdate(ctx, req.SlotID)
		if err != nil {
			return notFoundOr(err, "slot", req.SlotID, "failed to lock slot")
		}
		if sl.ExperienceID != exp.ID {
			return domain.NotFoundError{Resource: "slot", ID: req.SlotID}
		}

		if available := sl.Available(); available < req.Participants {
			return domain.CapacityExceededError{SlotID: sl.ID, Requested: req.Participants, Available: available}
		}

		base := decimal.NewFromInt(exp.Price).Mul(decimal.NewFromInt(int64(req.Participants)))
		discount := decimal.Zero
		var applied *string
		if req.PromoCode != "" {
			code, d, err := promo.ResolveAndPrice(ctx, tx, req.PromoCode, base)
			if err != nil {
				return err
			}
			discount = d
			normalized := promo.Normalize(code.Code)
			applied = &normalized
		}

		created = models.Booking{
			ID:             s.newID(),
			ExperienceID:   exp.ID,
			SlotID:         sl.ID,
			UserName:       req.UserName,
			UserEmail:      req.UserEmail,
			UserPhone:      req.UserPhone,
			Participants:   req.Participants,
			PromoCode:      applied,
			DiscountAmount: discount,
			TotalAmount:    base.Sub(discount),
			Status:         models.BookingStatusConfirmed,
		}
		if err := tx.InsertBooking(ctx, &created); err != nil {
			return domain.Internal("failed to create booking", err)
		}
		if err := tx.UpdateSlotBookedCount(ctx, sl.ID, req.Participants); err != nil {
			if errors.Is(err, store.ErrCapacityConstraint) {
				return domain.CapacityExceededError{SlotID: sl.ID, Requested: req.Participants, Available: sl.Available()}
			}
			return domain.Internal("failed to reserve slot", err)
		}

		slot = *sl
		slot.BookedSlots += req.Participants
		return nil
	})
	if err != nil {
		err = domain.Internal("failed to create booking", err)
		s.log.WithError(err).WithFields(logrus.Fields{
			"experience_id": req.ExperienceID,
			"slot_id":       req.SlotID,
			"participants":  req.Participants,
		}).Info("booking rejected")
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.id", created.ID))
	s.log.WithFields(logrus.Fields{
		"booking_id":   created.ID,
		"slot_id":      created.SlotID,
		"participants": created.Participants,
		"total":        created.TotalAmount.String(),
	}).Info("booking confirmed")

	s.publish(ctx, events.KindBookingCreated, created, slot)
	return &created, nil
}

// notFoundOr turns store.ErrNotFound into a typed NotFoundError and wraps
// anything else as internal.
func notFoundOr(err error, resource, id, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFoundError{Resource: resource, ID: id}
	}
	return domain.Internal(msg, err)
}
