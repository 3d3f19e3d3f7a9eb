package repository

import (
	"context"

	"classifieds-marketplace/internal/domain/model"
)

type SubscriptionPlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.SubscriptionPlan) error
	FindByID(ctx context.Context, id string) (*model.SubscriptionPlan, error)
	ListActive(ctx context.Context) ([]*model.SubscriptionPlan, error)
}

type HighlightPlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.HighlightPlan) error
	FindByID(ctx context.Context, id string) (*model.HighlightPlan, error)
	ListActive(ctx context.Context) ([]*model.HighlightPlan, error)
}
