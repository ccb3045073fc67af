package models

import "time"

// BorderColor is the display tag of an experience card
type BorderColor string

const (
	BorderColorPink   BorderColor = "pink"
	BorderColorYellow BorderColor = "yellow"
	BorderColorBlue   BorderColor = "blue"
	BorderColorGreen  BorderColor = "green"
)

// Experience represents a bookable activity in the catalog
type Experience struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Price       int64       `json:"price"`
	Image       string      `json:"image"`
	BorderColor BorderColor `json:"border_color"`
	About       string      `json:"about"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Slot is one dated, timed instance of an experience with finite capacity
type Slot struct {
	ID           string    `json:"id"`
	ExperienceID string    `json:"experience_id"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	TotalSlots   int       `json:"total_slots"`
	BookedSlots  int       `json:"booked_slots"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Available returns the remaining capacity, which may be negative if the
// row is over-subscribed.
func (s Slot) Available() int {
	return s.TotalSlots - s.BookedSlots
}

// SlotsLeft is the display value of the remaining capacity, never below zero.
func (s Slot) SlotsLeft() int {
	if left := s.Available(); left > 0 {
		return left
	}
	return 0
}

// TimeAvailability is one slot as shown in an availability view
type TimeAvailability struct {
	Time      string `json:"time"`
	SlotsLeft int    `json:"slotsLeft"`
	SlotID    string `json:"slotId"`
}

// DateAvailability groups the slots of a single date
type DateAvailability struct {
	Date  string             `json:"date"`
	Times []TimeAvailability `json:"times"`
}

// ExperienceDetails is an experience together with its availability
type ExperienceDetails struct {
	Experience
	AvailableDates []string           `json:"availableDates"`
	AvailableTimes []TimeAvailability `json:"availableTimes"`
	Availability   []DateAvailability `json:"availability"`
}

// NewExperienceDetails groups slots by date, preserving the order in which
// the slots are given. Slots are expected ordered by date then time.
func NewExperienceDetails(exp Experience, slots []Slot) *ExperienceDetails {
	details := &ExperienceDetails{
		Experience:     exp,
		AvailableDates: []string{},
		AvailableTimes: []TimeAvailability{},
		Availability:   []DateAvailability{},
	}

	index := make(map[string]int)
	for _, s := range slots {
		i, ok := index[s.Date]
		if !ok {
			i = len(details.Availability)
			index[s.Date] = i
			details.AvailableDates = append(details.AvailableDates, s.Date)
			details.Availability = append(details.Availability, DateAvailability{Date: s.Date})
		}
		details.Availability[i].Times = append(details.Availability[i].Times, TimeAvailability{
			Time:      s.Time,
			SlotsLeft: s.SlotsLeft(),
			SlotID:    s.ID,
		})
	}

	if len(details.Availability) > 0 {
		details.AvailableTimes = details.Availability[0].Times
	}
	return details
}
