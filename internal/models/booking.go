package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	// BookingStatusPending is reserved for a reserve-then-confirm flow and is
	// never assigned by the current booking flow.
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a reservation of participants against one slot
type Booking struct {
	ID             string          `json:"id"`
	ExperienceID   string          `json:"experience_id"`
	SlotID         string          `json:"slot_id"`
	UserName       string          `json:"user_name"`
	UserEmail      string          `json:"user_email"`
	UserPhone      string          `json:"user_phone"`
	Participants   int             `json:"participants"`
	PromoCode      *string         `json:"promo_code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         BookingStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BookingDetails is a booking joined with its experience and slot
type BookingDetails struct {
	Booking
	ExperienceTitle    string `json:"experience_title"`
	ExperienceLocation string `json:"experience_location"`
	Date               string `json:"date"`
	Time               string `json:"time"`
}

// CreateBookingRequest represents a request to book a slot
type CreateBookingRequest struct {
	ExperienceID string `json:"experienceId" validate:"required"`
	SlotID       string `json:"slotId" validate:"required"`
	UserName     string `json:"userName" validate:"required,min=2"`
	UserEmail    string `json:"userEmail" validate:"required,email"`
	UserPhone    string `json:"userPhone" validate:"required,min=10"`
	Participants int    `json:"participants" validate:"required,min=1,max=10"`
	PromoCode    string `json:"promoCode,omitempty"`
}
