package service

import (
	"context"

	"github.com/bookit/experience-booking/internal/domain"
	"github.com/bookit/experience-booking/internal/models"
)

func (s *bookingServiceImpl) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	experiences, err := s.store.ListExperiences(ctx)
	if err != nil {
		return nil, domain.Internal("failed to list experiences", err)
	}
	return experiences, nil
}

// GetExperience returns an experience with its slots grouped by date. An
// experience without slots has empty availability.
func (s *bookingServiceImpl) GetExperience(ctx context.Context, experienceID string) (*models.ExperienceDetails, error) {
	exp, err := s.store.GetExperience(ctx, experienceID)
	if err != nil {
		return nil, notFoundOr(err, "experience", experienceID, "failed to get experience")
	}

	slots, err := s.store.ListSlots(ctx, experienceID, "")
	if err != nil {
		return nil, domain.Internal("failed to list slots", err)
	}
	return models.NewExperienceDetails(*exp, slots), nil
}

func (s *bookingServiceImpl) GetExperienceSlots(ctx context.Context, experienceID, date string) ([]models.Slot, error) {
	slots, err := s.store.ListSlots(ctx, experienceID, date)
	if err != nil {
		return nil, domain.Internal("failed to list slots", err)
	}
	return slots, nil
}

func (s *bookingServiceImpl) GetBooking(ctx context.Context, bookingID string) (*models.BookingDetails, error) {
	details, err := s.store.GetBookingDetails(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking", bookingID, "failed to get booking")
	}
	return details, nil
}

func (s *bookingServiceImpl) GetBookingsByEmail(ctx context.Context, email string) ([]models.BookingDetails, error) {
	bookings, err := s.store.ListBookingsByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("failed to list bookings", err)
	}
	return bookings, nil
}
