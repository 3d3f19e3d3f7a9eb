package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		reconcilePassesTotal,
		webhookRejectedTotal,
		entitlementsExpiredTotal,
	)
}

var (
	reconcilePassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_passes_total",
			Help: "Reconciliation passes by outcome (ok/duplicate/error).",
		},
		[]string{"outcome"},
	)

	webhookRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_rejected_total",
			Help: "Inbound webhook events rejected by signature verification.",
		},
	)

	entitlementsExpiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlements_expired_total",
			Help: "Entitlements deactivated by the expiry worker, by target.",
		},
		[]string{"target"}, // 'subscription', 'highlight', 'special_ad', 'listing'
	)
)

func IncReconcile(outcome string) {
	reconcilePassesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncWebhookRejected() {
	webhookRejectedTotal.Inc()
}

func AddEntitlementsExpired(target string, n int) {
	if n > 0 {
		entitlementsExpiredTotal.WithLabelValues(norm(target)).Add(float64(n))
	}
}
