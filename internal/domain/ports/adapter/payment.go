package adapter

import (
	"context"
	"time"
)

// GatewayPayment is the provider-agnostic view of a transaction as the
// gateway sees it, used to confirm inbound events before reconciling.
type GatewayPayment struct {
	ExternalTxID string
	Status       string // provider status, e.g. "approved"
	AmountCents  int64
	Currency     string
	Method       string
	Reference    string // our purchase-intent id, echoed back by the provider
	ApprovedAt   *time.Time
}

// CheckoutPreference is the provider-side checkout session the buyer is
// redirected into.
type CheckoutPreference struct {
	ID          string
	RedirectURL string
}

// PaymentGateway is the hex port for the card-payment provider.
type PaymentGateway interface {
	Name() string

	// CreatePreference opens a checkout session for the given amount,
	// tagging it with our intent id as the external reference.
	CreatePreference(ctx context.Context, amountCents int64, currency, title, reference, callbackURL string) (*CheckoutPreference, error)

	// GetPayment fetches a transaction by provider id. Both the webhook
	// and the callback path re-read the authoritative state from the
	// provider instead of trusting inbound parameters.
	GetPayment(ctx context.Context, externalTxID string) (*GatewayPayment, error)
}
