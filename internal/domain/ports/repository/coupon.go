package repository

import (
	"context"

	"classifieds-marketplace/internal/domain/model"
)

type CouponRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Coupon) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Coupon, error)
	// FindByCode looks up by normalized (upper-cased) code.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
	// Redeem atomically increments usage_count while it is still under
	// max_uses. Returns false when the limit was already reached; the
	// count is never decremented afterwards.
	Redeem(ctx context.Context, tx Tx, id string) (bool, error)
}
