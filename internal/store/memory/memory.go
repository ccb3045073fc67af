// Package memory is an in-process implementation of store.Store. Writes are
// staged per transaction and applied on commit; slot and booking rows are
// locked exclusively while a transaction holds them.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/store"
)

// Store keeps the catalog, promo codes and bookings in memory
type Store struct {
	mu          sync.RWMutex
	experiences map[string]models.Experience
	slots       map[string]models.Slot
	promos      map[string]models.PromoCode // normalised code -> promo
	bookings    map[string]models.Booking
	seq         map[string]int64 // booking id -> insertion order

	next  int64
	locks *rowLocks
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		experiences: make(map[string]models.Experience),
		slots:       make(map[string]models.Slot),
		promos:      make(map[string]models.PromoCode),
		bookings:    make(map[string]models.Booking),
		seq:         make(map[string]int64),
		locks:       newRowLocks(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutExperience adds or replaces an experience
func (s *Store) PutExperience(e models.Experience) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	s.experiences[e.ID] = e
}

// PutSlot adds or replaces a slot
func (s *Store) PutSlot(sl models.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl.CreatedAt.IsZero() {
		sl.CreatedAt = s.now()
	}
	if sl.UpdatedAt.IsZero() {
		sl.UpdatedAt = sl.CreatedAt
	}
	s.slots[sl.ID] = sl
}

// PutPromoCode adds or replaces a promo code under its uppercase form
func (s *Store) PutPromoCode(p models.PromoCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	s.promos[normalize(p.Code)] = p
}

// --- Catalog ---

func (s *Store) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Experience, 0, len(s.experiences))
	for _, e := range s.experiences {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetExperience(ctx context.Context, id string) (*models.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.experience(id)
}

func (s *Store) ListSlots(ctx context.Context, experienceID, date string) ([]models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Slot{}
	for _, sl := range s.slots {
		if sl.ExperienceID != experienceID {
			continue
		}
		if date != "" && sl.Date != date {
			continue
		}
		out = append(out, sl)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slot(id)
}

// --- Promo codes ---

func (s *Store) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promo(code)
}

func (s *Store) ListActivePromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.PromoCode{}
	for _, p := range s.promos {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

// --- Bookings ---

func (s *Store) GetBookingDetails(ctx context.Context, id string) (*models.BookingDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.details(b)
}

func (s *Store) ListBookingsByEmail(ctx context.Context, email string) ([]models.BookingDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Booking{}
	for _, b := range s.bookings {
		if b.UserEmail == email {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return s.seq[matched[i].ID] > s.seq[matched[j].ID]
	})

	out := make([]models.BookingDetails, 0, len(matched))
	for _, b := range matched {
		d, err := s.details(b)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// BookingsForSlot returns every booking on a slot, in insertion order.
func (s *Store) BookingsForSlot(slotID string) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Booking{}
	for _, b := range s.bookings {
		if b.SlotID == slotID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out
}

// --- Transactions ---

// WithTx runs fn with staged writes that become visible only on commit.
func (s *Store) WithTx(ctx context.Context, fn store.TxFunc) error {
	t := &tx{
		s:        s,
		held:     make(map[string]struct{}),
		deltas:   make(map[string]int),
		inserts:  make(map[string]models.Booking),
		statuses: make(map[string]models.BookingStatus),
	}
	defer t.release()

	if err := fn(ctx, t); err != nil {
		return err
	}
	return t.commit()
}

// --- helpers; callers hold s.mu ---

func (s *Store) experience(id string) (*models.Experience, error) {
	e, ok := s.experiences[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (s *Store) slot(id string) (*models.Slot, error) {
	sl, ok := s.slots[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sl, nil
}

func (s *Store) promo(code string) (*models.PromoCode, error) {
	p, ok := s.promos[normalize(code)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) details(b models.Booking) (*models.BookingDetails, error) {
	e, ok := s.experiences[b.ExperienceID]
	if !ok {
		return nil, fmt.Errorf("booking %s references missing experience %s", b.ID, b.ExperienceID)
	}
	sl, ok := s.slots[b.SlotID]
	if !ok {
		return nil, fmt.Errorf("booking %s references missing slot %s", b.ID, b.SlotID)
	}
	return &models.BookingDetails{
		Booking:            b,
		ExperienceTitle:    e.Title,
		ExperienceLocation: e.Location,
		Date:               sl.Date,
		Time:               sl.Time,
	}, nil
}
