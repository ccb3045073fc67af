package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/store"
)

type tx struct {
	s    *Store
	held map[string]struct{}

	deltas   map[string]int                  // slot id -> booked_slots delta
	inserts  map[string]models.Booking       // new bookings
	statuses map[string]models.BookingStatus // booking id -> new status
	order    []string                        // insertion order of new bookings
}

var _ store.Tx = (*tx)(nil)

func (t *tx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	if err := t.s.locks.acquire(ctx, key); err != nil {
		return fmt.Errorf("failed to lock %s: %w", key, err)
	}
	t.held[key] = struct{}{}
	return nil
}

func (t *tx) release() {
	for key := range t.held {
		t.s.locks.release(key)
	}
	t.held = nil
}

func (t *tx) GetExperience(ctx context.Context, id string) (*models.Experience, error) {
	return t.s.GetExperience(ctx, id)
}

func (t *tx) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	return t.s.GetPromoCode(ctx, code)
}

func (t *tx) GetSlotForUpdate(ctx context.Context, id string) (*models.Slot, error) {
	if err := t.lock(ctx, "slot:"+id); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	sl, err := t.s.slot(id)
	t.s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	sl.BookedSlots += t.deltas[id]
	return sl, nil
}

func (t *tx) GetBookingForUpdate(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := t.inserts[id]; ok {
		return &b, nil
	}
	if err := t.lock(ctx, "booking:"+id); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	b, ok := t.s.bookings[id]
	t.s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	if status, ok := t.statuses[id]; ok {
		b.Status = status
	}
	return &b, nil
}

func (t *tx) InsertBooking(ctx context.Context, b *models.Booking) error {
	t.s.mu.RLock()
	_, dup := t.s.bookings[b.ID]
	_, hasExperience := t.s.experiences[b.ExperienceID]
	_, hasSlot := t.s.slots[b.SlotID]
	t.s.mu.RUnlock()

	if _, staged := t.inserts[b.ID]; dup || staged {
		return fmt.Errorf("failed to insert booking: duplicate id %s", b.ID)
	}
	if !hasExperience || !hasSlot {
		return fmt.Errorf("failed to insert booking: unknown experience %s or slot %s", b.ExperienceID, b.SlotID)
	}

	now := t.s.now()
	b.CreatedAt = now
	b.UpdatedAt = now
	t.inserts[b.ID] = *b
	t.order = append(t.order, b.ID)
	return nil
}

func (t *tx) UpdateSlotBookedCount(ctx context.Context, slotID string, delta int) error {
	sl, err := t.GetSlotForUpdate(ctx, slotID)
	if err != nil {
		return err
	}
	booked := sl.BookedSlots + delta
	if booked < 0 || booked > sl.TotalSlots {
		return store.ErrCapacityConstraint
	}
	t.deltas[slotID] += delta
	return nil
}

func (t *tx) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if b, ok := t.inserts[id]; ok {
		b.Status = status
		t.inserts[id] = b
		return nil
	}
	if _, err := t.GetBookingForUpdate(ctx, id); err != nil {
		return err
	}
	t.statuses[id] = status
	return nil
}

func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, delta := range t.deltas {
		sl := s.slots[id]
		sl.BookedSlots += delta
		sl.UpdatedAt = now
		s.slots[id] = sl
	}
	for _, id := range t.order {
		s.next++
		s.seq[id] = s.next
		s.bookings[id] = t.inserts[id]
	}
	for id, status := range t.statuses {
		b := s.bookings[id]
		b.Status = status
		b.UpdatedAt = now
		s.bookings[id] = b
	}
	return nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
