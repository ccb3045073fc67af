// Package promo prices promo codes against an order amount.
package promo

import (
	"context"
	"errors"
	"strings"

	"github.com/bookit/experience-booking/internal/domain"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/store"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept on computed discounts.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Lookup finds a promo code by its normalised value.
type Lookup interface {
	GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error)
}

// Normalize returns the form codes are stored and compared in.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Calculate returns the discount the code grants on amount. It never exceeds
// amount and is rounded to MoneyPlaces.
func Calculate(code models.PromoCode, amount decimal.Decimal) (decimal.Decimal, error) {
	if !code.IsActive {
		return decimal.Zero, domain.InvalidPromoError{Code: code.Code, Reason: domain.PromoNotFound}
	}
	if amount.IsNegative() {
		return decimal.Zero, domain.InvalidPromoError{Code: code.Code, Reason: domain.PromoInvalidAmount}
	}

	if code.MinAmount.Valid && code.MinAmount.Decimal.IsPositive() && amount.LessThan(code.MinAmount.Decimal) {
		return decimal.Zero, domain.InvalidPromoError{
			Code:      code.Code,
			Reason:    domain.PromoMinimumNotMet,
			MinAmount: code.MinAmount.Decimal,
		}
	}

	var discount decimal.Decimal
	switch code.DiscountType {
	case models.DiscountTypePercentage:
		discount = amount.Mul(code.DiscountValue).Div(hundred)
		if code.MaxDiscount.Valid && code.MaxDiscount.Decimal.IsPositive() && discount.GreaterThan(code.MaxDiscount.Decimal) {
			discount = code.MaxDiscount.Decimal
		}
	case models.DiscountTypeFixed:
		discount = code.DiscountValue
	default:
		return decimal.Zero, domain.InvalidPromoError{Code: code.Code, Reason: domain.PromoUnsupportedType}
	}

	discount = discount.Round(MoneyPlaces)
	if discount.IsNegative() {
		return decimal.Zero, nil
	}
	return decimal.Min(discount, amount), nil
}

// ResolveAndPrice looks the code up and prices it against amount. It is safe
// to call with a transaction as the lookup as well as with a read-only store.
func ResolveAndPrice(ctx context.Context, lookup Lookup, code string, amount decimal.Decimal) (*models.PromoCode, decimal.Decimal, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return nil, decimal.Zero, domain.InvalidPromoError{Reason: domain.PromoNotFound}
	}

	promo, err := lookup.GetPromoCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, decimal.Zero, domain.InvalidPromoError{Code: normalized, Reason: domain.PromoNotFound}
		}
		return nil, decimal.Zero, domain.Internal("failed to look up promo code", err)
	}

	discount, err := Calculate(*promo, amount)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return promo, discount, nil
}
