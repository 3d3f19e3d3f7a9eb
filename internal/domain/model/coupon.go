package model

import (
	"strings"
	"time"

	"classifieds-marketplace/internal/domain"
)

// Coupon is a percentage discount code. Codes are case-insensitive and
// stored upper-cased. UsageCount only ever moves forward: a redeemed
// coupon stays consumed even when a downstream entitlement step fails.
type Coupon struct {
	ID              string
	Code            string
	DiscountPercent int
	Active          bool
	ExpiresAt       *time.Time
	MaxUses         *int
	UsageCount      int
	CreatedAt       time.Time
}

// NormalizeCouponCode canonicalizes a user-typed code for lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewCoupon validates and constructs a coupon.
func NewCoupon(id, code string, discountPercent int, expiresAt *time.Time, maxUses *int) (*Coupon, error) {
	if id == "" || strings.TrimSpace(code) == "" || discountPercent < 0 || discountPercent > 100 {
		return nil, domain.ErrInvalidArgument
	}
	if maxUses != nil && *maxUses <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Coupon{
		ID:              id,
		Code:            NormalizeCouponCode(code),
		DiscountPercent: discountPercent,
		Active:          true,
		ExpiresAt:       expiresAt,
		MaxUses:         maxUses,
		CreatedAt:       time.Now(),
	}, nil
}

// ClampDiscount bounds a discount percentage to [0,100].
func ClampDiscount(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// ApplyDiscount returns the charged amount after the clamped discount.
// Integer centavos in, integer centavos out; display rounding is the
// currency formatter's job, never done here.
func ApplyDiscount(baseCents int64, discountPercent int) int64 {
	d := int64(ClampDiscount(discountPercent))
	final := baseCents * (100 - d) / 100
	if final < 0 {
		return 0
	}
	return final
}
