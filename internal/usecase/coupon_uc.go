// File: internal/usecase/coupon_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
	"classifieds-marketplace/internal/infra/metrics"
)

// Compile-time check
var _ CouponUseCase = (*couponUC)(nil)

type CouponUseCase interface {
	// Validate checks a raw code against existence, active flag, expiry
	// and usage limit, in that order. It never mutates state.
	Validate(ctx context.Context, code string) (*model.Coupon, error)
	// Redeem consumes one use after a successful payment. The increment
	// is conditional on the usage limit and is never rolled back: a
	// redeemed coupon stays consumed even when a downstream entitlement
	// step fails.
	Redeem(ctx context.Context, tx repository.Tx, couponID string) (bool, error)
}

type couponUC struct {
	coupons repository.CouponRepository
	log     *zerolog.Logger
}

func NewCouponUseCase(coupons repository.CouponRepository, logger *zerolog.Logger) *couponUC {
	l := logger.With().Str("component", "CouponUC").Logger()
	return &couponUC{coupons: coupons, log: &l}
}

func (u *couponUC) Validate(ctx context.Context, code string) (*model.Coupon, error) {
	normalized := model.NormalizeCouponCode(code)
	if normalized == "" {
		metrics.IncCouponRejected("not_found")
		return nil, domain.ErrCouponNotFound
	}
	c, err := u.coupons.FindByCode(ctx, nil, normalized)
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCouponRejected("not_found")
			return nil, domain.ErrCouponNotFound
		}
		return nil, err
	}
	if !c.Active {
		metrics.IncCouponRejected("inactive")
		return nil, domain.ErrCouponInactive
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now()) {
		metrics.IncCouponRejected("expired")
		return nil, domain.ErrCouponExpired
	}
	if c.MaxUses != nil && c.UsageCount >= *c.MaxUses {
		metrics.IncCouponRejected("usage_limit")
		return nil, domain.ErrCouponUsageLimit
	}
	return c, nil
}

func (u *couponUC) Redeem(ctx context.Context, tx repository.Tx, couponID string) (bool, error) {
	ok, err := u.coupons.Redeem(ctx, tx, couponID)
	if err != nil {
		return false, err
	}
	if !ok {
		u.log.Warn().Str("coupon_id", couponID).Msg("redeem skipped: usage limit reached")
	}
	return ok, nil
}
