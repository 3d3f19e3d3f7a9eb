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

var (
	_ repository.SubscriptionPlanRepository = (*planRepo)(nil)
	_ repository.HighlightPlanRepository    = (*highlightPlanRepo)(nil)
)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error {
	const q = `
INSERT INTO subscription_plans (id, name, duration_days, price_cents, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET name=$2, duration_days=$3, price_cents=$4, active=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.DurationDays, p.PriceCents, p.Active, p.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	const q = `SELECT id, name, duration_days, price_cents, active, created_at FROM subscription_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}
	p := &model.SubscriptionPlan{}
	if err := row.Scan(&p.ID, &p.Name, &p.DurationDays, &p.PriceCents, &p.Active, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *planRepo) ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	const q = `SELECT id, name, duration_days, price_cents, active, created_at FROM subscription_plans WHERE active ORDER BY price_cents ASC;`
	rows, err := queryRows(ctx, r.pool, nil, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.SubscriptionPlan
	for rows.Next() {
		p := new(model.SubscriptionPlan)
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationDays, &p.PriceCents, &p.Active, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}

type highlightPlanRepo struct{ pool *pgxpool.Pool }

func NewHighlightPlanRepo(pool *pgxpool.Pool) *highlightPlanRepo {
	return &highlightPlanRepo{pool: pool}
}

const highlightPlanColumns = `id, name, price_cents, duration_days, badge_label, badge_color, active, created_at`

func (r *highlightPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.HighlightPlan) error {
	const q = `
INSERT INTO highlight_plans (` + highlightPlanColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET name=$2, price_cents=$3, duration_days=$4, badge_label=$5, badge_color=$6, active=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.PriceCents, p.DurationDays, p.BadgeLabel, p.BadgeColor, p.Active, p.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *highlightPlanRepo) FindByID(ctx context.Context, id string) (*model.HighlightPlan, error) {
	const q = `SELECT ` + highlightPlanColumns + ` FROM highlight_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}
	p := &model.HighlightPlan{}
	if err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationDays, &p.BadgeLabel, &p.BadgeColor, &p.Active, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *highlightPlanRepo) ListActive(ctx context.Context) ([]*model.HighlightPlan, error) {
	const q = `SELECT ` + highlightPlanColumns + ` FROM highlight_plans WHERE active ORDER BY price_cents ASC;`
	rows, err := queryRows(ctx, r.pool, nil, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.HighlightPlan
	for rows.Next() {
		p := new(model.HighlightPlan)
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationDays, &p.BadgeLabel, &p.BadgeColor, &p.Active, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}
