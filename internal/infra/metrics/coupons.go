package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		couponsRedeemedTotal,
		couponsRejectedTotal,
	)
}

var (
	couponsRedeemedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coupons_redeemed_total",
			Help: "Successful coupon usage increments.",
		},
	)

	couponsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupons_rejected_total",
			Help: "Coupon validation rejections by reason.",
		},
		[]string{"reason"}, // 'not_found', 'inactive', 'expired', 'usage_limit'
	)
)

func IncCouponRedeemed() {
	couponsRedeemedTotal.Inc()
}

func IncCouponRejected(reason string) {
	couponsRejectedTotal.WithLabelValues(norm(reason)).Inc()
}
