package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
)

var _ repository.SpecialAdRepository = (*specialAdRepo)(nil)

type specialAdRepo struct{ pool *pgxpool.Pool }

func NewSpecialAdRepo(pool *pgxpool.Pool) *specialAdRepo {
	return &specialAdRepo{pool: pool}
}

const specialAdColumns = `id, title, price_cents, status, expires_at, small_image_url, large_image_url, created_at`

func (r *specialAdRepo) Save(ctx context.Context, tx repository.Tx, ad *model.SpecialAd) error {
	const q = `
INSERT INTO special_ads (` + specialAdColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  title=$2, price_cents=$3, status=$4, expires_at=$5, small_image_url=$6, large_image_url=$7;`

	_, err := execSQL(ctx, r.pool, tx, q,
		ad.ID, ad.Title, ad.PriceCents, ad.Status, ad.ExpiresAt, ad.SmallImageURL, ad.LargeImageURL, ad.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *specialAdRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SpecialAd, error) {
	const q = `SELECT ` + specialAdColumns + ` FROM special_ads WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	ad := &model.SpecialAd{}
	if err := row.Scan(&ad.ID, &ad.Title, &ad.PriceCents, &ad.Status, &ad.ExpiresAt, &ad.SmallImageURL, &ad.LargeImageURL, &ad.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return ad, nil
}

func (r *specialAdRepo) ListActive(ctx context.Context) ([]*model.SpecialAd, error) {
	const q = `SELECT ` + specialAdColumns + ` FROM special_ads WHERE status='active' ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, nil, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.SpecialAd
	for rows.Next() {
		ad := new(model.SpecialAd)
		if err := rows.Scan(&ad.ID, &ad.Title, &ad.PriceCents, &ad.Status, &ad.ExpiresAt, &ad.SmallImageURL, &ad.LargeImageURL, &ad.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, ad)
	}
	return out, nil
}

func (r *specialAdRepo) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	const q = `UPDATE special_ads SET status='inactive' WHERE status='active' AND expires_at IS NOT NULL AND expires_at < $1;`
	cmd, err := execSQL(ctx, r.pool, nil, q, now)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}
