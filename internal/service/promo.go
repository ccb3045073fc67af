package service

import (
	"context"
	"fmt"

	"github.com/bookit/experience-booking/internal/domain"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/promo"
	"github.com/shopspring/decimal"
)

// PreviewPromo prices a code against amount without booking anything
func (s *bookingServiceImpl) PreviewPromo(ctx context.Context, code string, amount decimal.Decimal) (*models.PromoPreview, error) {
	if amount.IsNegative() {
		return nil, domain.ValidationError{Field: "amount", Msg: "must not be negative"}
	}

	p, discount, err := promo.ResolveAndPrice(ctx, s.store, code, amount)
	if err != nil {
		return nil, err
	}

	return &models.PromoPreview{
		Code:           promo.Normalize(p.Code),
		DiscountType:   p.DiscountType,
		DiscountValue:  p.DiscountValue,
		DiscountAmount: discount,
		FinalAmount:    amount.Sub(discount),
		Message:        fmt.Sprintf("Promo code applied! You saved ₹%s", discount.String()),
	}, nil
}

func (s *bookingServiceImpl) ListPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	codes, err := s.store.ListActivePromoCodes(ctx)
	if err != nil {
		return nil, domain.Internal("failed to list promo codes", err)
	}
	return codes, nil
}
