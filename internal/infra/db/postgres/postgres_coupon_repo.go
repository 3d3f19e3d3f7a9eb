package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*couponRepo)(nil)

type couponRepo struct{ pool *pgxpool.Pool }

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

const couponColumns = `id, code, discount_percent, active, expires_at, max_uses, usage_count, created_at`

func (r *couponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (` + couponColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  code=$2, discount_percent=$3, active=$4, expires_at=$5, max_uses=$6, usage_count=$7;`

	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, model.NormalizeCouponCode(c.Code), c.DiscountPercent, c.Active, c.ExpiresAt, c.MaxUses, c.UsageCount, c.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *couponRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Coupon, error) {
	const q = `SELECT ` + couponColumns + ` FROM coupons WHERE id=$1;`
	return r.scanOne(ctx, tx, q, id)
}

func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	const q = `SELECT ` + couponColumns + ` FROM coupons WHERE code=$1 LIMIT 1;`
	return r.scanOne(ctx, tx, q, model.NormalizeCouponCode(code))
}

// Redeem performs the conditional increment-and-check in one statement.
// A row is only touched while usage_count is still under max_uses, so a
// concurrent retried pass can never push the count past the limit.
func (r *couponRepo) Redeem(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `
UPDATE coupons
   SET usage_count = usage_count + 1
 WHERE id = $1
   AND active
   AND (max_uses IS NULL OR usage_count < max_uses);`

	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *couponRepo) scanOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Coupon, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	c := &model.Coupon{}
	if err := row.Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.Active, &c.ExpiresAt, &c.MaxUses, &c.UsageCount, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}
