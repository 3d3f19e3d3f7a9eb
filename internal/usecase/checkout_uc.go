// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/adapter"
	"classifieds-marketplace/internal/domain/ports/repository"
)

// CheckoutInput is everything the buyer decided before paying.
type CheckoutInput struct {
	UserID          string
	Kind            model.PurchaseKind
	PlanID          string
	AdID            string
	HighlightPlanID string
	CouponCode      string
	// Agreed price for a footer-ad purchase; plans and highlights are
	// priced from their reference rows.
	FooterAdPriceCents int64
	PendingListing     *model.ListingDraft
	PendingFooterAd    *model.FooterAdDraft
}

// CheckoutOutput either redirects the buyer into the gateway or, for a
// free highlight, reports immediate activation with no payment cycle.
type CheckoutOutput struct {
	IntentID        string
	RedirectURL     string
	AmountCents     int64
	DiscountPercent int
	Activated       bool
}

// CheckoutUseCase stages a purchase intent server-side and opens the
// gateway checkout session. The intent id travels to the provider as
// the external reference and returns on the confirmation event, which
// is how reconciliation finds the staged payloads again.
type CheckoutUseCase struct {
	plans          repository.SubscriptionPlanRepository
	highlightPlans repository.HighlightPlanRepository
	intents        repository.PurchaseIntentRepository
	coupons        CouponUseCase
	chain          *HighlightChain
	gateway        adapter.PaymentGateway
	tm             repository.TransactionManager
	callbackURL    string
	log            *zerolog.Logger
}

func NewCheckoutUseCase(
	plans repository.SubscriptionPlanRepository,
	highlightPlans repository.HighlightPlanRepository,
	intents repository.PurchaseIntentRepository,
	coupons CouponUseCase,
	chain *HighlightChain,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	callbackURL string,
	logger *zerolog.Logger,
) *CheckoutUseCase {
	l := logger.With().Str("component", "CheckoutUC").Logger()
	return &CheckoutUseCase{
		plans:          plans,
		highlightPlans: highlightPlans,
		intents:        intents,
		coupons:        coupons,
		chain:          chain,
		gateway:        gateway,
		tm:             tm,
		callbackURL:    callbackURL,
		log:            &l,
	}
}

// Initiate validates the purchase, applies an optional coupon, stages
// the intent, and returns the gateway redirect. Validation failures
// reach no persisted state.
func (u *CheckoutUseCase) Initiate(ctx context.Context, in *CheckoutInput) (*CheckoutOutput, error) {
	if in == nil || in.UserID == "" {
		return nil, domain.ErrInvalidArgument
	}

	base, title, err := u.basePrice(ctx, in)
	if err != nil {
		return nil, err
	}

	// A zero-price highlight never enters a payment cycle: grant it on
	// the spot, exactly like a chained free highlight.
	if in.Kind == model.PurchaseKindHighlight && base == 0 {
		err := u.tm.WithTx(ctx, defaultTxOptions(), func(ctx context.Context, tx repository.Tx) error {
			_, err := u.chain.Resolve(ctx, tx, in.AdID, in.HighlightPlanID)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &CheckoutOutput{Activated: true}, nil
	}

	discount := 0
	if in.CouponCode != "" {
		c, err := u.coupons.Validate(ctx, in.CouponCode)
		if err != nil {
			return nil, err
		}
		discount = model.ClampDiscount(c.DiscountPercent)
	}
	amount := model.ApplyDiscount(base, discount)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: nothing to charge", domain.ErrInvalidArgument)
	}

	intent := &model.PurchaseIntent{
		ID:              ulid.Make().String(),
		UserID:          in.UserID,
		Kind:            in.Kind,
		AmountCents:     amount,
		PlanID:          in.PlanID,
		AdID:            in.AdID,
		HighlightPlanID: in.HighlightPlanID,
		CouponCode:      model.NormalizeCouponCode(in.CouponCode),
		PendingListing:  in.PendingListing,
		PendingFooterAd: in.PendingFooterAd,
		CreatedAt:       time.Now(),
	}
	if err := u.intents.Save(ctx, intent); err != nil {
		return nil, err
	}

	pref, err := u.gateway.CreatePreference(ctx, amount, "BRL", title, intent.ID, u.callbackURL)
	if err != nil {
		// Best effort: do not leave an orphaned intent behind.
		_ = u.intents.Delete(ctx, intent.ID)
		return nil, err
	}
	u.log.Info().Str("intent_id", intent.ID).Str("kind", string(in.Kind)).
		Int64("amount_cents", amount).Int("discount_percent", discount).
		Msg("checkout initiated")

	return &CheckoutOutput{
		IntentID:        intent.ID,
		RedirectURL:     pref.RedirectURL,
		AmountCents:     amount,
		DiscountPercent: discount,
	}, nil
}

func (u *CheckoutUseCase) basePrice(ctx context.Context, in *CheckoutInput) (int64, string, error) {
	switch in.Kind {
	case model.PurchaseKindPlan:
		if in.PlanID == "" {
			return 0, "", domain.ErrMissingTargetID
		}
		plan, err := u.plans.FindByID(ctx, in.PlanID)
		if err != nil {
			return 0, "", err
		}
		return plan.PriceCents, "Plano " + plan.Name, nil
	case model.PurchaseKindHighlight:
		if in.AdID == "" || in.HighlightPlanID == "" {
			return 0, "", domain.ErrMissingTargetID
		}
		plan, err := u.highlightPlans.FindByID(ctx, in.HighlightPlanID)
		if err != nil {
			return 0, "", err
		}
		return plan.PriceCents, "Destaque " + plan.Name, nil
	case model.PurchaseKindFooterAd:
		if in.PendingFooterAd == nil || in.FooterAdPriceCents <= 0 {
			return 0, "", domain.ErrInvalidArgument
		}
		return in.FooterAdPriceCents, "Anúncio de rodapé", nil
	default:
		return 0, "", domain.ErrUnknownPurchaseKind
	}
}
