package memory

import (
	"fmt"

	"github.com/bookit/experience-booking/internal/models"
	"github.com/shopspring/decimal"
)

type sampleTime struct {
	time  string
	total int
}

var sampleTimes = []sampleTime{
	{"07:00 am", 6}, {"09:00 am", 8}, {"11:00 am", 5}, {"01:00 pm", 10},
	{"05:00 am", 10}, {"05:30 am", 8}, {"06:00 am", 12}, {"08:00 am", 12},
	{"10:00 am", 7}, {"02:00 pm", 4}, {"04:00 pm", 8}, {"05:00 pm", 5},
	{"06:00 pm", 2}, {"12:00 pm", 10}, {"03:00 pm", 8}, {"04:30 am", 12},
}

var sampleDates = []string{"Oct 22", "Oct 23", "Oct 24", "Oct 25", "Oct 26"}

// LoadSample fills s with a demo catalog and the standard promo codes.
func LoadSample(s *Store) {
	experiences := []models.Experience{
		{ID: "1", Title: "Kayaking", Location: "Udupi", Price: 999, Image: "/kayaking-mangrove", BorderColor: models.BorderColorPink,
			About: "Scenic routes, trained guides, and safety briefing. Minimum age 10."},
		{ID: "2", Title: "Nandi Hills Sunrise", Location: "Bangalore", Price: 899, Image: "/nandi-hills-sunrise", BorderColor: models.BorderColorYellow,
			About: "Experience the breathtaking sunrise from Nandi Hills."},
		{ID: "3", Title: "Coffee Trail", Location: "Coorg", Price: 1299, Image: "/coffee-trail", BorderColor: models.BorderColorBlue,
			About: "Walk through scenic coffee plantations and enjoy fresh brewed coffee."},
		{ID: "4", Title: "Kayaking", Location: "Udupi, Karnataka", Price: 999, Image: "/kayaking-sunset", BorderColor: models.BorderColorGreen,
			About: "Evening kayaking experience with golden hour views."},
		{ID: "5", Title: "Boat Cruise", Location: "Sunderbans", Price: 999, Image: "/boat-cruise", BorderColor: models.BorderColorYellow,
			About: "Relaxing boat cruise through scenic waterways."},
		{ID: "6", Title: "Bunjee Jumping", Location: "Manali", Price: 999, Image: "/bunjee-jumping", BorderColor: models.BorderColorPink,
			About: "Adrenaline-pumping bungee jumping with certified instructors."},
	}

	for i, exp := range experiences {
		exp.Description = "Curated small-group experience. Certified guide. Safety first with gear included."
		s.PutExperience(exp)

		for d, date := range sampleDates {
			for k := 0; k < 3; k++ {
				st := sampleTimes[(i*3+d+k*5)%len(sampleTimes)]
				s.PutSlot(models.Slot{
					ID:           fmt.Sprintf("%s-%d-%d", exp.ID, d, k),
					ExperienceID: exp.ID,
					Date:         date,
					Time:         st.time,
					TotalSlots:   st.total,
					BookedSlots:  (i + d + k) % (st.total/2 + 1),
				})
			}
		}
	}

	for _, p := range SamplePromoCodes() {
		s.PutPromoCode(p)
	}
}

// SamplePromoCodes returns SAVE10, FLAT100 and WELCOME20.
func SamplePromoCodes() []models.PromoCode {
	limit := func(v int64) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
	}
	return []models.PromoCode{
		{ID: "promo-save10", Code: "SAVE10", DiscountType: models.DiscountTypePercentage, DiscountValue: decimal.NewFromInt(10),
			MinAmount: limit(500), MaxDiscount: limit(200), IsActive: true},
		{ID: "promo-flat100", Code: "FLAT100", DiscountType: models.DiscountTypeFixed, DiscountValue: decimal.NewFromInt(100),
			MinAmount: limit(800), IsActive: true},
		{ID: "promo-welcome20", Code: "WELCOME20", DiscountType: models.DiscountTypePercentage, DiscountValue: decimal.NewFromInt(20),
			MinAmount: limit(1000), MaxDiscount: limit(300), IsActive: true},
	}
}
