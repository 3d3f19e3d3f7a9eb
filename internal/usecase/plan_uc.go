// File: internal/usecase/plan_uc.go
package usecase

import (
	"context"

	"github.com/google/uuid"

	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
)

// PlanUseCase manages the read-only reference plans: subscription plans
// and highlight plans. Used by the public catalog endpoints and seeding.
type PlanUseCase struct {
	plans          repository.SubscriptionPlanRepository
	highlightPlans repository.HighlightPlanRepository
}

func NewPlanUseCase(plans repository.SubscriptionPlanRepository, highlightPlans repository.HighlightPlanRepository) *PlanUseCase {
	return &PlanUseCase{plans: plans, highlightPlans: highlightPlans}
}

func (uc *PlanUseCase) CreatePlan(ctx context.Context, name string, durationDays int, priceCents int64) (*model.SubscriptionPlan, error) {
	p, err := model.NewSubscriptionPlan(uuid.NewString(), name, durationDays, priceCents)
	if err != nil {
		return nil, err
	}
	if err := uc.plans.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *PlanUseCase) CreateHighlightPlan(ctx context.Context, name string, priceCents int64, durationDays int, badgeLabel, badgeColor string) (*model.HighlightPlan, error) {
	p, err := model.NewHighlightPlan(uuid.NewString(), name, priceCents, durationDays, badgeLabel, badgeColor)
	if err != nil {
		return nil, err
	}
	if err := uc.highlightPlans.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *PlanUseCase) ListPlans(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	return uc.plans.ListActive(ctx)
}

func (uc *PlanUseCase) ListHighlightPlans(ctx context.Context) ([]*model.HighlightPlan, error) {
	return uc.highlightPlans.ListActive(ctx)
}
