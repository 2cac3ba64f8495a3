// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		redemptionsTotal,
		enrollmentsTotal,
		accessChecksTotal,
		redeemLatencyMs,
		accessEventsTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by outcome.",
		},
		[]string{"status"}, // redeemed|already_redeemed_by_self|invalid_code|code_already_used|error
	)

	enrollmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollments_total",
			Help: "Free enrollment attempts by outcome.",
		},
		[]string{"status"}, // enrolled|already_enrolled|error
	)

	accessChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_checks_total",
			Help: "Access decisions by result and the rule that decided them.",
		},
		[]string{"result", "reason"}, // reason: admin|free|enrolled|none|error
	)

	accessEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_events_total",
			Help: "Access granted events by delivery outcome.",
		},
		[]string{"result"}, // published|failed|dropped
	)

	redeemLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redeem_latency_ms",
			Help:    "Redemption transaction latency in milliseconds.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncRedemption(status string) {
	redemptionsTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveRedeemLatency(ms float64) {
	redeemLatencyMs.Observe(ms)
}

func IncEnrollment(status string) {
	enrollmentsTotal.WithLabelValues(norm(status)).Inc()
}

func IncAccessCheck(granted bool, reason string) {
	result := "denied"
	if granted {
		result = "granted"
	}
	accessChecksTotal.WithLabelValues(result, norm(reason)).Inc()
}

func IncAccessEvent(result string) {
	accessEventsTotal.WithLabelValues(norm(result)).Inc()
}
