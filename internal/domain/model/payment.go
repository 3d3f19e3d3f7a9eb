package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // awaiting gateway confirmation
	PaymentStatusCompleted PaymentStatus = "completed" // confirmed by gateway, entitlement granted or in progress
	PaymentStatusFailed    PaymentStatus = "failed"    // rejected or cancelled at gateway
	PaymentStatusRefunded  PaymentStatus = "refunded"  // reversed after completion
)

// PurchaseKind is the tagged union of everything money can buy here.
type PurchaseKind string

const (
	PurchaseKindPlan      PurchaseKind = "plan"
	PurchaseKindHighlight PurchaseKind = "highlight"
	PurchaseKindFooterAd  PurchaseKind = "footer_ad"
)

// Payment is the append-only audit trail of money movements. At most one
// row exists per ExternalTxID; the gateway-issued transaction id is the
// idempotency key that makes the client callback and the webhook safe to
// race each other.
type Payment struct {
	ID                    string // UUID
	UserID                string
	AmountCents           int64  // integer centavos, never float
	Currency              string // "BRL"
	Method                string // e.g. "credit_card", "pix"
	ExternalTxID          string // gateway transaction id (unique)
	Kind                  PurchaseKind
	Status                PaymentStatus
	PlanID                *string
	AdID                  *string
	CouponID              *string
	CouponDiscountPercent *int
	Meta                  map[string]interface{} // chain context, serialized as JSONB
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ConfirmationEvent is the normalized payment-success signal, built from
// either the browser callback or the gateway webhook.
type ConfirmationEvent struct {
	ExternalTxID    string
	AmountCents     int64
	Currency        string
	Method          string
	Status          PaymentStatus
	Kind            PurchaseKind
	UserID          string
	PlanID          *string
	AdID            *string
	HighlightPlanID *string
	CouponCode      *string
	IntentID        *string // staged purchase intent, if checkout went through us
}
