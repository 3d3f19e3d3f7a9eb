// File: internal/infra/sched/expiry_worker.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain/ports/repository"
	"classifieds-marketplace/internal/infra/metrics"
)

// ExpiryWorker periodically sweeps time-bound entitlements: lapsed
// subscriptions, highlights past their window, listings past their end
// date, and footer placements past their 30 days.
type ExpiryWorker struct {
	interval   time.Duration
	subs       repository.SubscriptionRepository
	listings   repository.ListingRepository
	specialAds repository.SpecialAdRepository
	log        *zerolog.Logger
}

func NewExpiryWorker(
	interval time.Duration,
	subs repository.SubscriptionRepository,
	listings repository.ListingRepository,
	specialAds repository.SpecialAdRepository,
	logger *zerolog.Logger,
) *ExpiryWorker {
	l := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval:   interval,
		subs:       subs,
		listings:   listings,
		specialAds: specialAds,
		log:        &l,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	now := time.Now()

	if n, err := w.subs.DeactivateExpired(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("subscription expiry sweep failed")
	} else if n > 0 {
		metrics.AddEntitlementsExpired("subscription", n)
		w.log.Info().Int("count", n).Msg("expired subscriptions deactivated")
	}

	if n, err := w.listings.ClearExpiredHighlights(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("highlight expiry sweep failed")
	} else if n > 0 {
		metrics.AddEntitlementsExpired("highlight", n)
		w.log.Info().Int("count", n).Msg("expired highlights cleared")
	}

	if n, err := w.listings.ExpireEnded(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("listing expiry sweep failed")
	} else if n > 0 {
		metrics.AddEntitlementsExpired("listing", n)
		w.log.Info().Int("count", n).Msg("ended listings expired")
	}

	if n, err := w.specialAds.DeactivateExpired(ctx, now); err != nil {
		w.log.Error().Err(err).Msg("special ad expiry sweep failed")
	} else if n > 0 {
		metrics.AddEntitlementsExpired("special_ad", n)
		w.log.Info().Int("count", n).Msg("expired special ads deactivated")
	}
}
