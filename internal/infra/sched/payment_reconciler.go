// File: internal/infra/sched/payment_reconciler.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classifieds-marketplace/internal/domain/model"
	"classifieds-marketplace/internal/domain/ports/adapter"
	"classifieds-marketplace/internal/domain/ports/repository"
	"classifieds-marketplace/internal/usecase"
)

// PaymentReconciler periodically re-polls stale pending payments at the
// gateway and drives them to a terminal state. This covers the window
// where both the browser callback and the webhook were lost, or the
// process crashed mid-reconcile.
type PaymentReconciler struct {
	reconcile  *usecase.ReconcileUseCase
	payments   repository.PaymentRepository
	gateway    adapter.PaymentGateway
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending row must be to retry
	log        *zerolog.Logger
}

func NewPaymentReconciler(
	reconcile *usecase.ReconcileUseCase,
	payments repository.PaymentRepository,
	gateway adapter.PaymentGateway,
	interval, staleAfter time.Duration,
	logger *zerolog.Logger,
) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	l := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{
		reconcile:  reconcile,
		payments:   payments,
		gateway:    gateway,
		interval:   interval,
		staleAfter: staleAfter,
		log:        &l,
	}
}

func (w *PaymentReconciler) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("stale_after", w.staleAfter).
		Msg("starting payment reconciler")
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping payment reconciler")
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("list stale pending payments failed")
		return
	}
	for _, p := range pending {
		if err := w.poll(ctx, p); err != nil {
			w.log.Error().Err(err).Str("payment_id", p.ID).
				Str("external_tx_id", p.ExternalTxID).Msg("stale payment poll failed")
		}
	}
}

func (w *PaymentReconciler) poll(ctx context.Context, p *model.Payment) error {
	gp, err := w.gateway.GetPayment(ctx, p.ExternalTxID)
	if err != nil {
		return err
	}

	// Seed from the stored row so reconciliation still works after the
	// staged intent's TTL ran out.
	ev := &model.ConfirmationEvent{
		ExternalTxID: gp.ExternalTxID,
		AmountCents:  gp.AmountCents,
		Currency:     gp.Currency,
		Method:       gp.Method,
		Kind:         p.Kind,
		UserID:       p.UserID,
		PlanID:       p.PlanID,
		AdID:         p.AdID,
	}
	if gp.Reference != "" {
		ref := gp.Reference
		ev.IntentID = &ref
	}

	switch gp.Status {
	case "approved":
		ev.Status = model.PaymentStatusCompleted
		res, err := w.reconcile.Reconcile(ctx, ev)
		if err != nil {
			return err
		}
		w.log.Info().Str("payment_id", p.ID).Bool("duplicate", res.Duplicate).
			Msg("stale payment reconciled")
		return nil
	case "rejected", "cancelled":
		ev.Status = model.PaymentStatusFailed
		return w.reconcile.RecordFailure(ctx, ev)
	default:
		// Still pending at the provider; try again next tick.
		return nil
	}
}
