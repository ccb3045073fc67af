// Package store defines the storage contract shared by the Postgres
// repository and the in-memory store.
package store

import (
	"context"
	"errors"

	"github.com/bookit/experience-booking/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrCapacityConstraint is returned when a counter update would leave a
	// slot outside 0 <= booked_slots <= total_slots.
	ErrCapacityConstraint = errors.New("slot capacity constraint violated")
)

// CatalogReader reads experiences and slots without locking.
type CatalogReader interface {
	ListExperiences(ctx context.Context) ([]models.Experience, error)
	GetExperience(ctx context.Context, id string) (*models.Experience, error)
	// ListSlots returns the slots of an experience ordered by date then time.
	// An empty date returns every date.
	ListSlots(ctx context.Context, experienceID, date string) ([]models.Slot, error)
	GetSlot(ctx context.Context, id string) (*models.Slot, error)
}

// PromoReader reads promo codes. Codes are looked up in their normalised
// uppercase form; inactive codes are returned and left to the caller.
type PromoReader interface {
	GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error)
	ListActivePromoCodes(ctx context.Context) ([]models.PromoCode, error)
}

// BookingReader reads bookings joined with their experience and slot.
type BookingReader interface {
	GetBookingDetails(ctx context.Context, id string) (*models.BookingDetails, error)
	// ListBookingsByEmail returns the user's bookings newest first.
	ListBookingsByEmail(ctx context.Context, email string) ([]models.BookingDetails, error)
}

// Tx is the set of operations that compose into one atomic unit. Rows read
// with a ForUpdate method stay locked until the transaction ends.
type Tx interface {
	GetExperience(ctx context.Context, id string) (*models.Experience, error)
	GetSlotForUpdate(ctx context.Context, id string) (*models.Slot, error)
	GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error)
	GetBookingForUpdate(ctx context.Context, id string) (*models.Booking, error)
	// InsertBooking persists b and fills its timestamps.
	InsertBooking(ctx context.Context, b *models.Booking) error
	UpdateSlotBookedCount(ctx context.Context, slotID string, delta int) error
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
}

// TxFunc runs inside a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is the storage handle injected into the booking service.
type Store interface {
	CatalogReader
	PromoReader
	BookingReader
	// WithTx runs fn in a transaction and commits if fn returns nil.
	WithTx(ctx context.Context, fn TxFunc) error
}
