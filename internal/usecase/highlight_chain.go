// File: internal/usecase/highlight_chain.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
)

// HighlightChain decides what happens to a highlight intent attached to
// a listing that was just created or activated.
//
// The invariant it protects: a non-zero-price highlight is never granted
// without its own completed payment, even if it was "intended" at the
// time of a different purchase. A priced highlight therefore yields a
// redirect instruction into a new checkout cycle; only a free highlight
// is applied on the spot.
type HighlightChain struct {
	highlightPlans repository.HighlightPlanRepository
	entitlements   *EntitlementUseCase
	log            *zerolog.Logger
}

func NewHighlightChain(highlightPlans repository.HighlightPlanRepository, entitlements *EntitlementUseCase, logger *zerolog.Logger) *HighlightChain {
	l := logger.With().Str("component", "HighlightChain").Logger()
	return &HighlightChain{highlightPlans: highlightPlans, entitlements: entitlements, log: &l}
}

// Resolve returns a non-nil NextIntent when the caller must start a new
// checkout for the highlight, or activates it immediately when the plan
// is free.
func (c *HighlightChain) Resolve(ctx context.Context, tx repository.Tx, adID, highlightPlanID string) (*model.NextIntent, error) {
	plan, err := c.highlightPlans.FindByID(ctx, highlightPlanID)
	if err != nil {
		return nil, err
	}
	if plan.PriceCents > 0 {
		c.log.Info().Str("ad_id", adID).Str("highlight_plan_id", highlightPlanID).
			Int64("price_cents", plan.PriceCents).Msg("highlight requires its own payment, emitting next intent")
		return &model.NextIntent{
			Kind:            model.PurchaseKindHighlight,
			AdID:            adID,
			HighlightPlanID: highlightPlanID,
		}, nil
	}
	if err := c.entitlements.ActivateHighlight(ctx, tx, adID, highlightPlanID); err != nil {
		return nil, err
	}
	return nil, nil
}
