//go:build !integration

// File: internal/usecase/checkout_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/adapter"
)

type checkoutFixture struct {
	plans          *memPlanRepo
	highlightPlans *memHighlightPlanRepo
	intents        *memIntentRepo
	coupons        *memCouponRepo
	listings       *memListingRepo
	subs           *memSubRepo
	gateway        *mockGateway
	uc             *CheckoutUseCase
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		plans:          newMemPlanRepo(),
		highlightPlans: newMemHighlightPlanRepo(),
		intents:        newMemIntentRepo(),
		coupons:        newMemCouponRepo(),
		listings:       newMemListingRepo(),
		subs:           newMemSubRepo(),
		gateway:        &mockGateway{},
	}
	log := newTestLogger()
	tm := &mockTxManager{}
	couponUC := NewCouponUseCase(f.coupons, log)
	entitlements := NewEntitlementUseCase(f.subs, f.plans, f.highlightPlans, f.listings, log)
	chain := NewHighlightChain(f.highlightPlans, entitlements, log)
	f.uc = NewCheckoutUseCase(f.plans, f.highlightPlans, f.intents, couponUC, chain, f.gateway, tm, "https://site.example/retorno", log)
	return f
}

func TestCheckoutPlanWithCoupon(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	plan, _ := model.NewSubscriptionPlan("plan-30", "Profissional", 30, 10000)
	if err := f.plans.Save(ctx, nil, plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	maxUses := 100
	c, _ := model.NewCoupon("coupon-1", "DESCONTO10", 10, nil, &maxUses)
	if err := f.coupons.Save(ctx, nil, c); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	out, err := f.uc.Initiate(ctx, &CheckoutInput{
		UserID:     "user-1",
		Kind:       model.PurchaseKindPlan,
		PlanID:     "plan-30",
		CouponCode: "desconto10",
		PendingListing: &model.ListingDraft{
			Title:      "Violão Yamaha",
			PriceCents: 45000,
		},
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if out.AmountCents != 9000 {
		t.Errorf("amount = %d, want 9000 after 10%% off", out.AmountCents)
	}
	if out.DiscountPercent != 10 {
		t.Errorf("discount = %d, want 10", out.DiscountPercent)
	}
	if out.RedirectURL == "" || out.IntentID == "" {
		t.Error("expected a gateway redirect and a staged intent id")
	}

	intent, err := f.intents.Find(ctx, out.IntentID)
	if err != nil {
		t.Fatalf("intent not staged: %v", err)
	}
	if intent.PendingListing == nil || intent.PendingListing.Title != "Violão Yamaha" {
		t.Error("listing draft not carried on the intent")
	}
	if intent.CouponCode != "DESCONTO10" {
		t.Errorf("coupon code = %q, want normalized DESCONTO10", intent.CouponCode)
	}
	if got, _ := f.coupons.FindByID(ctx, nil, "coupon-1"); got.UsageCount != 0 {
		t.Error("checkout must not consume coupon uses; redemption happens at reconcile")
	}
}

func TestCheckoutFreeHighlightActivatesImmediately(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	hp, _ := model.NewHighlightPlan("hl-free", "Simples", 0, 7, "", "")
	if err := f.highlightPlans.Save(ctx, nil, hp); err != nil {
		t.Fatalf("seed highlight plan: %v", err)
	}
	listing := &model.Listing{ID: "ad-1", UserID: "user-2", Title: "Fusca 78", Status: model.ListingStatusPending}
	if err := f.listings.Save(ctx, nil, listing); err != nil {
		t.Fatalf("seed listing: %v", err)
	}

	out, err := f.uc.Initiate(ctx, &CheckoutInput{
		UserID:          "user-2",
		Kind:            model.PurchaseKindHighlight,
		AdID:            "ad-1",
		HighlightPlanID: "hl-free",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if !out.Activated {
		t.Fatal("free highlight must activate without a payment cycle")
	}
	if out.RedirectURL != "" || out.IntentID != "" {
		t.Error("free highlight must not touch the gateway")
	}
	got, _ := f.listings.FindByID(ctx, nil, "ad-1")
	if !got.HighlightActive("hl-free", time.Now()) {
		t.Error("highlight not applied")
	}
	if f.intents.count() != 0 {
		t.Error("no intent may be staged for a free highlight")
	}
}

func TestCheckoutRejectsInvalidCouponBeforeStaging(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	plan, _ := model.NewSubscriptionPlan("plan-30", "Básico", 30, 4990)
	if err := f.plans.Save(ctx, nil, plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	_, err := f.uc.Initiate(ctx, &CheckoutInput{
		UserID:     "user-3",
		Kind:       model.PurchaseKindPlan,
		PlanID:     "plan-30",
		CouponCode: "NAOEXISTE",
	})
	if err != domain.ErrCouponNotFound {
		t.Fatalf("got %v, want ErrCouponNotFound", err)
	}
	if f.intents.count() != 0 {
		t.Error("failed validation must leave no staged state")
	}
}

func TestCheckoutCleansUpIntentOnGatewayError(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	plan, _ := model.NewSubscriptionPlan("plan-30", "Básico", 30, 4990)
	if err := f.plans.Save(ctx, nil, plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	gatewayErr := errors.New("gateway unavailable")
	f.gateway.CreatePreferenceFunc = func(ctx context.Context, amountCents int64, currency, title, reference, callbackURL string) (*adapter.CheckoutPreference, error) {
		return nil, gatewayErr
	}

	_, err := f.uc.Initiate(ctx, &CheckoutInput{
		UserID: "user-4",
		Kind:   model.PurchaseKindPlan,
		PlanID: "plan-30",
	})
	if !errors.Is(err, gatewayErr) {
		t.Fatalf("got %v, want gateway error", err)
	}
	if f.intents.count() != 0 {
		t.Error("orphaned intent left behind after gateway failure")
	}
}

func TestCheckoutFooterAdRequiresDraftAndPrice(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	_, err := f.uc.Initiate(ctx, &CheckoutInput{
		UserID: "user-5",
		Kind:   model.PurchaseKindFooterAd,
	})
	if err != domain.ErrInvalidArgument {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}

	out, err := f.uc.Initiate(ctx, &CheckoutInput{
		UserID:             "user-5",
		Kind:               model.PurchaseKindFooterAd,
		FooterAdPriceCents: 15000,
		PendingFooterAd:    &model.FooterAdDraft{Title: "Padaria Central", ArtNeeded: true},
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if out.AmountCents != 15000 {
		t.Errorf("amount = %d, want the agreed 15000", out.AmountCents)
	}
	intent, err := f.intents.Find(ctx, out.IntentID)
	if err != nil {
		t.Fatalf("intent not staged: %v", err)
	}
	if intent.PendingFooterAd == nil || !intent.PendingFooterAd.ArtNeeded {
		t.Error("art_needed flag lost on the staged intent")
	}
}
