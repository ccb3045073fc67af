package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType is how a promo code reduces the charge
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// PromoCode is a discount rule applied at checkout
type PromoCode struct {
	ID            string              `json:"id"`
	Code          string              `json:"code"`
	DiscountType  DiscountType        `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	MinAmount     decimal.NullDecimal `json:"min_amount"`
	MaxDiscount   decimal.NullDecimal `json:"max_discount"`
	IsActive      bool                `json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// PromoPreviewRequest asks what a code would take off an amount
type PromoPreviewRequest struct {
	Code   string          `json:"code" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// PromoPreview is the discount breakdown for a code and an amount
type PromoPreview struct {
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Message        string          `json:"message"`
}
