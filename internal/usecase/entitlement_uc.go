// File: internal/usecase/entitlement_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
)

// EntitlementUseCase mutates the target entity of a completed purchase
// into its active state: subscription upsert for plans, highlight fields
// for highlights. Footer ads are handled by FooterAdUseCase.
//
// Every mutation re-checks the target's terminal state first so a
// retried reconciliation pass no-ops instead of re-applying.
type EntitlementUseCase struct {
	subs           repository.SubscriptionRepository
	plans          repository.SubscriptionPlanRepository
	highlightPlans repository.HighlightPlanRepository
	listings       repository.ListingRepository
	log            *zerolog.Logger
}

func NewEntitlementUseCase(
	subs repository.SubscriptionRepository,
	plans repository.SubscriptionPlanRepository,
	highlightPlans repository.HighlightPlanRepository,
	listings repository.ListingRepository,
	logger *zerolog.Logger,
) *EntitlementUseCase {
	l := logger.With().Str("component", "EntitlementUC").Logger()
	return &EntitlementUseCase{
		subs:           subs,
		plans:          plans,
		highlightPlans: highlightPlans,
		listings:       listings,
		log:            &l,
	}
}

// ActivatePlan upserts the user's subscription with a fresh expiry of
// now + plan.DurationDays (remaining days on early renewal are not
// stacked). When a listing rode along with the purchase it is also
// transitioned to its visible state.
func (u *EntitlementUseCase) ActivatePlan(ctx context.Context, tx repository.Tx, userID, planID string, adID *string) error {
	if userID == "" || planID == "" {
		return domain.ErrMissingTargetID
	}
	plan, err := u.plans.FindByID(ctx, planID)
	if err != nil {
		return err
	}

	now := time.Now()
	sub, err := u.subs.FindByUser(ctx, tx, userID)
	if err != nil && err != domain.ErrNotFound {
		return err
	}
	if sub == nil {
		sub = &model.Subscription{UserID: userID}
	}
	sub.RenewFrom(now, plan)
	if err := u.subs.Upsert(ctx, tx, sub); err != nil {
		return err
	}
	u.log.Info().Str("user_id", userID).Str("plan_id", planID).
		Time("expires_at", *sub.ExpiresAt).Msg("subscription activated")

	if adID != nil && *adID != "" {
		if err := u.activateListing(ctx, tx, *adID, now); err != nil {
			return err
		}
	}
	return nil
}

// ActivateHighlight grants a highlight to an existing listing, forcing
// it active and approved. No-ops when the same highlight is already in
// effect (retried reconciliation pass).
func (u *EntitlementUseCase) ActivateHighlight(ctx context.Context, tx repository.Tx, adID, highlightPlanID string) error {
	if adID == "" || highlightPlanID == "" {
		return domain.ErrMissingTargetID
	}
	listing, err := u.listings.FindByID(ctx, tx, adID)
	if err != nil {
		return err
	}
	now := time.Now()
	if listing.HighlightActive(highlightPlanID, now) {
		u.log.Debug().Str("ad_id", adID).Str("highlight_plan_id", highlightPlanID).
			Msg("highlight already active, skipping")
		return nil
	}
	plan, err := u.highlightPlans.FindByID(ctx, highlightPlanID)
	if err != nil {
		return err
	}
	listing.ApplyHighlight(plan, now)
	if err := u.listings.Save(ctx, tx, listing); err != nil {
		return err
	}
	u.log.Info().Str("ad_id", adID).Str("highlight_plan_id", highlightPlanID).
		Time("highlight_expires_at", *listing.HighlightExpiresAt).Msg("highlight activated")
	return nil
}

// MaterializeListing creates a listing from a draft staged at checkout.
// This is the only place a listing comes into existence without a prior
// paid listing flow, supporting the "buy plan while creating ad"
// combined checkout. The new listing is born active and approved since
// the plan payment already succeeded.
func (u *EntitlementUseCase) MaterializeListing(ctx context.Context, tx repository.Tx, userID, listingID string, draft *model.ListingDraft) (*model.Listing, error) {
	if draft == nil {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	days := draft.DurationDays
	if days <= 0 {
		days = 30
	}
	end := now.Add(time.Duration(days) * 24 * time.Hour)
	l := &model.Listing{
		ID:            listingID,
		UserID:        userID,
		Title:         draft.Title,
		Description:   draft.Description,
		PriceCents:    draft.PriceCents,
		Category:      draft.Category,
		Status:        model.ListingStatusActive,
		AdminApproved: true,
		EndDate:       &end,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.listings.Save(ctx, tx, l); err != nil {
		return nil, err
	}
	u.log.Info().Str("ad_id", l.ID).Str("user_id", userID).Msg("listing materialized from staged draft")
	return l, nil
}

func (u *EntitlementUseCase) activateListing(ctx context.Context, tx repository.Tx, adID string, now time.Time) error {
	listing, err := u.listings.FindByID(ctx, tx, adID)
	if err != nil {
		return err
	}
	if listing.Status == model.ListingStatusActive && listing.AdminApproved {
		return nil
	}
	listing.Status = model.ListingStatusActive
	listing.AdminApproved = true
	listing.UpdatedAt = now
	if err := u.listings.Save(ctx, tx, listing); err != nil {
		return err
	}
	u.log.Info().Str("ad_id", adID).Msg("listing activated")
	return nil
}
