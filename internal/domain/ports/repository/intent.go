package repository

import (
	"context"

	"classifieds-marketplace/internal/domain/model"
)

// PurchaseIntentRepository stages checkout payloads server-side so they
// survive the redirect to the payment form. Records are TTL-bound.
type PurchaseIntentRepository interface {
	Save(ctx context.Context, intent *model.PurchaseIntent) error
	// Find returns the intent without consuming it. A reconciliation
	// pass that only needs to peek (e.g. a duplicate delivery) must not
	// burn the record.
	Find(ctx context.Context, id string) (*model.PurchaseIntent, error)
	// Consume atomically fetches and deletes the intent (one-shot).
	// Returns domain.ErrIntentConsumed when it is already gone.
	Consume(ctx context.Context, id string) (*model.PurchaseIntent, error)
	Delete(ctx context.Context, id string) error
}
