package repository

import (
	"context"
	"time"

	"classifieds-marketplace/internal/domain/model"
)

type SpecialAdRepository interface {
	Save(ctx context.Context, tx Tx, ad *model.SpecialAd) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.SpecialAd, error)
	ListActive(ctx context.Context) ([]*model.SpecialAd, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

type ProductionRequestRepository interface {
	Save(ctx context.Context, tx Tx, r *model.ProductionRequest) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ProductionRequest, error)
	ListPending(ctx context.Context) ([]*model.ProductionRequest, error)
}
