package repository

import (
	"context"
	"time"

	"classifieds-marketplace/internal/domain/model"
)

type SubscriptionRepository interface {
	// Upsert inserts or replaces the single row keyed by user id.
	Upsert(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	// DeactivateExpired flips active rows whose expiry passed; returns
	// the number of rows touched.
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}
