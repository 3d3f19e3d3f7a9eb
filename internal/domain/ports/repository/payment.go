package repository

import (
	"context"
	"time"

	"classifieds-marketplace/internal/domain/model"
)

type PaymentRepository interface {
	// Insert persists a new payment row. Returns domain.ErrAlreadyExists
	// when a row with the same external transaction id is present; the
	// recorder treats that as success-no-op.
	Insert(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByExternalTxID(ctx context.Context, tx Tx, externalTxID string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus) error
	// LinkAd attaches a listing id to a payment after the listing is
	// materialized from a staged draft.
	LinkAd(ctx context.Context, tx Tx, id string, adID string) error
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
	SumCompletedByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
