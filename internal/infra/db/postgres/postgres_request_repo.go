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

var _ repository.ProductionRequestRepository = (*requestRepo)(nil)

type requestRepo struct{ pool *pgxpool.Pool }

func NewRequestRepo(pool *pgxpool.Pool) *requestRepo {
	return &requestRepo{pool: pool}
}

const requestColumns = `id, user_id, ad_type, materials, observations, proposed_value_cents, status, created_at, completed_at`

func (r *requestRepo) Save(ctx context.Context, tx repository.Tx, req *model.ProductionRequest) error {
	const q = `
INSERT INTO production_requests (` + requestColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  materials=$4, observations=$5, proposed_value_cents=$6, status=$7, completed_at=$9;`

	_, err := execSQL(ctx, r.pool, tx, q,
		req.ID, req.UserID, req.AdType, req.Materials, req.Observations, req.ProposedValueCents, req.Status, req.CreatedAt, req.CompletedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *requestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ProductionRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM production_requests WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	req := &model.ProductionRequest{}
	if err := row.Scan(&req.ID, &req.UserID, &req.AdType, &req.Materials, &req.Observations, &req.ProposedValueCents, &req.Status, &req.CreatedAt, &req.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return req, nil
}

func (r *requestRepo) ListPending(ctx context.Context) ([]*model.ProductionRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM production_requests WHERE status='pending' ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, nil, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.ProductionRequest
	for rows.Next() {
		req := new(model.ProductionRequest)
		if err := rows.Scan(&req.ID, &req.UserID, &req.AdType, &req.Materials, &req.Observations, &req.ProposedValueCents, &req.Status, &req.CreatedAt, &req.CompletedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, req)
	}
	return out, nil
}
