// File: internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain"
	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/repository"
	"classifieds-marketplace/internal/infra/metrics"
)

func defaultTxOptions() pgx.TxOptions { return pgx.TxOptions{} }

// ReconcileResult reports what a reconciliation pass did.
type ReconcileResult struct {
	Payment      *model.Payment
	Entitlements []string
	NextIntent   *model.NextIntent
	Warnings     []string
	Duplicate    bool // the transaction id had already been recorded
}

// ReconcileUseCase turns a payment-success signal into the correct,
// idempotent set of entity mutations. It is the single entry point for
// both the browser success callback and the gateway webhook, which can
// fire concurrently for the same logical payment; the unique
// external transaction id on the payment row is what collapses the two
// deliveries into one effect.
//
// No step is retried here. The webhook's own redelivery and the stale
// payment worker are the retry mechanisms.
type ReconcileUseCase struct {
	payments     repository.PaymentRepository
	coupons      CouponUseCase
	entitlements *EntitlementUseCase
	footerAds    *FooterAdUseCase
	chain        *HighlightChain
	intents      repository.PurchaseIntentRepository
	tm           repository.TransactionManager
	log          *zerolog.Logger
}

func NewReconcileUseCase(
	payments repository.PaymentRepository,
	coupons CouponUseCase,
	entitlements *EntitlementUseCase,
	footerAds *FooterAdUseCase,
	chain *HighlightChain,
	intents repository.PurchaseIntentRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *ReconcileUseCase {
	l := logger.With().Str("component", "ReconcileUC").Logger()
	return &ReconcileUseCase{
		payments:     payments,
		coupons:      coupons,
		entitlements: entitlements,
		footerAds:    footerAds,
		chain:        chain,
		intents:      intents,
		tm:           tm,
		log:          &l,
	}
}

// Reconcile processes a confirmed payment event. Safe to invoke twice
// for the same external transaction id: the duplicate pass records
// nothing, redeems nothing, and grants nothing.
func (u *ReconcileUseCase) Reconcile(ctx context.Context, ev *model.ConfirmationEvent) (*ReconcileResult, error) {
	if ev == nil || ev.ExternalTxID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if ev.Status != model.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: reconcile requires a completed payment, got %q", domain.ErrInvalidArgument, ev.Status)
	}

	// Staged checkout context, if any. Peek only: the intent is burned
	// after the pass commits, so a crashed pass can be re-driven.
	var intent *model.PurchaseIntent
	if ev.IntentID != nil && *ev.IntentID != "" {
		var err error
		intent, err = u.intents.Find(ctx, *ev.IntentID)
		if err != nil && err != domain.ErrNotFound {
			return nil, err
		}
	}
	u.enrichFromIntent(ev, intent)

	res := &ReconcileResult{}
	err := u.tm.WithTx(ctx, defaultTxOptions(), func(ctx context.Context, tx repository.Tx) error {
		newlyRecorded, payment, err := u.recordPayment(ctx, tx, ev)
		if err != nil {
			return err
		}
		res.Payment = payment
		res.Duplicate = !newlyRecorded
		if !newlyRecorded {
			// Everything downstream already happened (or will, in the
			// racing pass that inserted the row). Re-granting here
			// would double-apply discounts and entitlements.
			u.log.Debug().Str("external_tx_id", ev.ExternalTxID).Msg("duplicate delivery, skipping")
			return nil
		}

		if payment.CouponID != nil {
			ok, err := u.coupons.Redeem(ctx, tx, *payment.CouponID)
			if err != nil || !ok {
				// The charge already went through with the discount
				// applied; losing the increment is preferable to
				// failing the entitlement. Flag for operators.
				warn := fmt.Sprintf("coupon redemption failed (coupon=%s payment=%s)", *payment.CouponID, payment.ID)
				res.Warnings = append(res.Warnings, warn)
				u.log.Warn().Err(err).Str("coupon_id", *payment.CouponID).
					Str("payment_id", payment.ID).Msg("coupon redemption failed after payment")
			} else {
				metrics.IncCouponRedeemed()
			}
		}

		return u.grantEntitlement(ctx, tx, ev, intent, payment, res)
	})
	if err != nil {
		metrics.IncReconcile("error")
		u.log.Error().Err(err).Str("external_tx_id", ev.ExternalTxID).
			Str("kind", string(ev.Kind)).Msg("reconciliation failed after payment capture")
		return nil, err
	}

	// Burn the staged payload regardless of which branch fired. Done
	// after commit so a rolled-back pass can run again from the intent.
	if intent != nil {
		if _, err := u.intents.Consume(ctx, intent.ID); err != nil && err != domain.ErrIntentConsumed {
			res.Warnings = append(res.Warnings, "failed to clear staged checkout payload")
			u.log.Warn().Err(err).Str("intent_id", intent.ID).Msg("intent consume failed")
		}
	}

	if res.Duplicate {
		metrics.IncReconcile("duplicate")
	} else {
		metrics.IncReconcile("ok")
		metrics.IncPayment(string(model.PaymentStatusCompleted))
		metrics.AddPaymentRevenue(ev.Currency, ev.AmountCents)
	}
	return res, nil
}

// RecordFailure books a failed gateway outcome for the audit trail.
// Idempotent like the success path; grants nothing.
func (u *ReconcileUseCase) RecordFailure(ctx context.Context, ev *model.ConfirmationEvent) error {
	if ev == nil || ev.ExternalTxID == "" {
		return domain.ErrInvalidArgument
	}
	var intent *model.PurchaseIntent
	if ev.IntentID != nil && *ev.IntentID != "" {
		intent, _ = u.intents.Find(ctx, *ev.IntentID)
	}
	u.enrichFromIntent(ev, intent)
	ev.Status = model.PaymentStatusFailed

	err := u.tm.WithTx(ctx, defaultTxOptions(), func(ctx context.Context, tx repository.Tx) error {
		_, _, err := u.recordPayment(ctx, tx, ev)
		return err
	})
	if err != nil {
		return err
	}
	metrics.IncPayment(string(model.PaymentStatusFailed))
	return nil
}

// RecordPending books a non-terminal gateway state so the stale-payment
// worker has a row to poll even if no further webhook arrives. Grants
// nothing; a later Reconcile promotes the row in place.
func (u *ReconcileUseCase) RecordPending(ctx context.Context, ev *model.ConfirmationEvent) error {
	if ev == nil || ev.ExternalTxID == "" {
		return domain.ErrInvalidArgument
	}
	var intent *model.PurchaseIntent
	if ev.IntentID != nil && *ev.IntentID != "" {
		intent, _ = u.intents.Find(ctx, *ev.IntentID)
	}
	u.enrichFromIntent(ev, intent)
	ev.Status = model.PaymentStatusPending

	return u.tm.WithTx(ctx, defaultTxOptions(), func(ctx context.Context, tx repository.Tx) error {
		_, _, err := u.recordPayment(ctx, tx, ev)
		return err
	})
}

// recordPayment implements the record-once contract. Both the client
// callback and the webhook can submit the same transaction; the second
// submitter gets the existing row and newlyRecorded=false. The one
// exception is a pending row reaching a terminal state: that promotion
// counts as the first effective recording.
func (u *ReconcileUseCase) recordPayment(ctx context.Context, tx repository.Tx, ev *model.ConfirmationEvent) (bool, *model.Payment, error) {
	if existing, err := u.payments.FindByExternalTxID(ctx, tx, ev.ExternalTxID); err == nil {
		if existing.Status == model.PaymentStatusPending && ev.Status != model.PaymentStatusPending {
			if err := u.payments.UpdateStatus(ctx, tx, existing.ID, ev.Status); err != nil {
				return false, nil, err
			}
			existing.Status = ev.Status
			// The intent may already be gone; the pending row carries
			// enough context to finish the grant.
			if ev.Kind == "" {
				ev.Kind = existing.Kind
			}
			if ev.UserID == "" {
				ev.UserID = existing.UserID
			}
			if ev.PlanID == nil {
				ev.PlanID = existing.PlanID
			}
			if ev.AdID == nil {
				ev.AdID = existing.AdID
			}
			return true, existing, nil
		}
		return false, existing, nil
	} else if err != domain.ErrNotFound {
		return false, nil, err
	}

	if ev.Kind == "" && ev.Status == model.PaymentStatusCompleted {
		// A brand-new completed row needs purchase context to grant
		// anything; a duplicate or promoted delivery resolves it from
		// storage, and failed/pending rows are pure bookkeeping.
		return false, nil, domain.ErrUnknownPurchaseKind
	}

	now := time.Now()
	p := &model.Payment{
		ID:           uuid.NewString(),
		UserID:       ev.UserID,
		AmountCents:  ev.AmountCents,
		Currency:     ev.Currency,
		Method:       ev.Method,
		ExternalTxID: ev.ExternalTxID,
		Kind:         ev.Kind,
		Status:       ev.Status,
		PlanID:       ev.PlanID,
		AdID:         ev.AdID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ev.CouponCode != nil && *ev.CouponCode != "" {
		// Validation failures here are warnings upstream, not fatal:
		// the charge already reflects whatever discount checkout
		// applied. We only link the coupon when it still resolves.
		if c, err := u.coupons.Validate(ctx, *ev.CouponCode); err == nil {
			p.CouponID = &c.ID
			d := model.ClampDiscount(c.DiscountPercent)
			p.CouponDiscountPercent = &d
		} else {
			u.log.Warn().Err(err).Str("code", *ev.CouponCode).
				Str("external_tx_id", ev.ExternalTxID).Msg("coupon no longer validates at reconcile time")
		}
	}

	if err := u.payments.Insert(ctx, tx, p); err != nil {
		if err == domain.ErrAlreadyExists {
			// Lost the race against the other delivery path.
			existing, ferr := u.payments.FindByExternalTxID(ctx, tx, ev.ExternalTxID)
			if ferr != nil {
				return false, nil, ferr
			}
			return false, existing, nil
		}
		return false, nil, err
	}
	return true, p, nil
}

func (u *ReconcileUseCase) grantEntitlement(ctx context.Context, tx repository.Tx, ev *model.ConfirmationEvent, intent *model.PurchaseIntent, payment *model.Payment, res *ReconcileResult) error {
	switch ev.Kind {
	case model.PurchaseKindPlan:
		if ev.PlanID == nil || *ev.PlanID == "" {
			return domain.ErrMissingTargetID
		}

		adID := ev.AdID
		var draft *model.ListingDraft
		if intent != nil {
			draft = intent.PendingListing
		}
		if (adID == nil || *adID == "") && draft != nil {
			// Combined "buy plan while creating ad" checkout: the
			// listing exists only as a staged draft until now.
			listing, err := u.entitlements.MaterializeListing(ctx, tx, ev.UserID, uuid.NewString(), draft)
			if err != nil {
				return err
			}
			if err := u.payments.LinkAd(ctx, tx, payment.ID, listing.ID); err != nil {
				return err
			}
			adID = &listing.ID
			payment.AdID = adID
			res.Entitlements = append(res.Entitlements, "listing:"+listing.ID)
		}

		if err := u.entitlements.ActivatePlan(ctx, tx, ev.UserID, *ev.PlanID, adID); err != nil {
			return err
		}
		res.Entitlements = append(res.Entitlements, "subscription:"+ev.UserID)

		// A highlight intended alongside the plan purchase starts its
		// own payment cycle unless the highlight plan is free.
		if draft != nil && draft.HighlightPlanID != "" && adID != nil {
			next, err := u.chain.Resolve(ctx, tx, *adID, draft.HighlightPlanID)
			if err != nil {
				return err
			}
			if next != nil {
				res.NextIntent = next
			} else {
				res.Entitlements = append(res.Entitlements, "highlight:"+*adID)
			}
		}
		return nil

	case model.PurchaseKindHighlight:
		adID, planID := ev.AdID, ev.HighlightPlanID
		if intent != nil {
			if adID == nil && intent.AdID != "" {
				adID = &intent.AdID
			}
			if planID == nil && intent.HighlightPlanID != "" {
				planID = &intent.HighlightPlanID
			}
		}
		if adID == nil || *adID == "" || planID == nil || *planID == "" {
			return domain.ErrMissingTargetID
		}
		if err := u.entitlements.ActivateHighlight(ctx, tx, *adID, *planID); err != nil {
			return err
		}
		res.Entitlements = append(res.Entitlements, "highlight:"+*adID)
		return nil

	case model.PurchaseKindFooterAd:
		var draft *model.FooterAdDraft
		if intent != nil {
			draft = intent.PendingFooterAd
		}
		if draft == nil {
			// Payment captured but the staged payload is gone. Surface
			// instead of silently losing the entitlement.
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("footer ad payload missing for payment %s; manual fulfillment required", payment.ID))
			u.log.Error().Str("payment_id", payment.ID).Str("external_tx_id", ev.ExternalTxID).
				Msg("footer ad staged payload missing after capture")
			return nil
		}
		tag, err := u.footerAds.Publish(ctx, tx, ev.UserID, draft, ev.AmountCents)
		if err != nil {
			return err
		}
		res.Entitlements = append(res.Entitlements, tag)
		return nil

	default:
		return domain.ErrUnknownPurchaseKind
	}
}

// enrichFromIntent fills event fields the gateway does not echo back
// from the staged checkout context.
func (u *ReconcileUseCase) enrichFromIntent(ev *model.ConfirmationEvent, intent *model.PurchaseIntent) {
	if intent == nil {
		return
	}
	if ev.Kind == "" {
		ev.Kind = intent.Kind
	}
	if ev.UserID == "" {
		ev.UserID = intent.UserID
	}
	if ev.PlanID == nil && intent.PlanID != "" {
		ev.PlanID = &intent.PlanID
	}
	if ev.AdID == nil && intent.AdID != "" {
		ev.AdID = &intent.AdID
	}
	if ev.HighlightPlanID == nil && intent.HighlightPlanID != "" {
		ev.HighlightPlanID = &intent.HighlightPlanID
	}
	if ev.CouponCode == nil && intent.CouponCode != "" {
		ev.CouponCode = &intent.CouponCode
	}
}
