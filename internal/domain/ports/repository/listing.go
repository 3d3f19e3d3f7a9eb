package repository

import (
	"context"
	"time"

	"classifieds-marketplace/internal/domain/model"
)

type ListingRepository interface {
	Save(ctx context.Context, tx Tx, l *model.Listing) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Listing, error)
	// ClearExpiredHighlights removes highlight fields whose expiry
	// passed; returns rows touched.
	ClearExpiredHighlights(ctx context.Context, now time.Time) (int, error)
	// ExpireEnded moves active listings past their end date to expired;
	// returns rows touched.
	ExpireEnded(ctx context.Context, now time.Time) (int, error)
}
