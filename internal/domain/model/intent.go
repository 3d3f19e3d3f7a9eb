package model

import "time"

// PurchaseIntent is the server-held staging record for a checkout in
// flight. It replaces client-local storage for payloads that must
// survive the redirect to the payment form: the pending listing draft,
// the pending footer-ad draft, and the desired highlight add-on. The
// intent id travels through the gateway as the external reference and
// comes back on the confirmation event.
//
// Intents are short-lived (TTL-bound in Redis) and consumed at most
// once, regardless of which reconciliation branch fires.
type PurchaseIntent struct {
	ID              string       `json:"id"` // ULID, sortable
	UserID          string       `json:"user_id"`
	Kind            PurchaseKind `json:"kind"`
	AmountCents     int64        `json:"amount_cents"` // after discount
	PlanID          string       `json:"plan_id,omitempty"`
	AdID            string       `json:"ad_id,omitempty"`
	HighlightPlanID string       `json:"highlight_plan_id,omitempty"`
	CouponCode      string       `json:"coupon_code,omitempty"`
	PendingListing  *ListingDraft  `json:"pending_listing,omitempty"`
	PendingFooterAd *FooterAdDraft `json:"pending_footer_ad,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// NextIntent is the redirect instruction emitted by the highlight chain
// resolver when a chained purchase must start its own payment cycle.
type NextIntent struct {
	Kind            PurchaseKind `json:"kind"`
	AdID            string       `json:"ad_id"`
	HighlightPlanID string       `json:"highlight_plan_id"`
}
