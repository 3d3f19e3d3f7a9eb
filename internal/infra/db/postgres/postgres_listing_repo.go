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

var _ repository.ListingRepository = (*listingRepo)(nil)

type listingRepo struct{ pool *pgxpool.Pool }

func NewListingRepo(pool *pgxpool.Pool) *listingRepo {
	return &listingRepo{pool: pool}
}

const listingColumns = `id, user_id, title, description, price_cents, category, status, admin_approved, highlight_plan_id, highlight_expires_at, end_date, created_at, updated_at`

func (r *listingRepo) Save(ctx context.Context, tx repository.Tx, l *model.Listing) error {
	const q = `
INSERT INTO listings (` + listingColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  title=$3, description=$4, price_cents=$5, category=$6, status=$7, admin_approved=$8,
  highlight_plan_id=$9, highlight_expires_at=$10, end_date=$11, updated_at=$13;`

	_, err := execSQL(ctx, r.pool, tx, q,
		l.ID, l.UserID, l.Title, l.Description, l.PriceCents, l.Category, l.Status, l.AdminApproved,
		l.HighlightPlanID, l.HighlightExpiresAt, l.EndDate, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *listingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Listing, error) {
	q := `SELECT ` + listingColumns + ` FROM listings WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	l := &model.Listing{}
	if err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.Description, &l.PriceCents, &l.Category,
		&l.Status, &l.AdminApproved, &l.HighlightPlanID, &l.HighlightExpiresAt,
		&l.EndDate, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return l, nil
}

func (r *listingRepo) ClearExpiredHighlights(ctx context.Context, now time.Time) (int, error) {
	const q = `
UPDATE listings
   SET highlight_plan_id=NULL, highlight_expires_at=NULL, updated_at=NOW()
 WHERE highlight_expires_at IS NOT NULL AND highlight_expires_at < $1;`
	cmd, err := execSQL(ctx, r.pool, nil, q, now)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}

func (r *listingRepo) ExpireEnded(ctx context.Context, now time.Time) (int, error) {
	const q = `UPDATE listings SET status='expired', updated_at=NOW() WHERE status='active' AND end_date IS NOT NULL AND end_date < $1;`
	cmd, err := execSQL(ctx, r.pool, nil, q, now)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}
