// Package metrics exposes Prometheus counters for the detection engine:
//   - signal_ticks_total                      – polling cycles executed
//   - signal_emitted_total{type,direction}    – signals emitted past the cooldown gate
//   - signal_errors_total                     – fetch and rule evaluation failures
//   - signal_active_cooldowns                 – keys currently tracked in memory (gauge)
//   - signal_webhook_deliveries_total{status} – webhook posts by outcome
//
// All collectors are registered in init() and served by the HTTP server
// at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_ticks_total",
			Help: "Polling cycles executed",
		},
	)

	emitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_emitted_total",
			Help: "Signals emitted past the cooldown gate",
		},
		[]string{"type", "direction"},
	)

	detectErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_errors_total",
			Help: "Fetch and rule evaluation failures",
		},
	)

	activeCooldowns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signal_active_cooldowns",
			Help: "Cooldown keys currently tracked in memory",
		},
	)

	webhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_webhook_deliveries_total",
			Help: "Webhook deliveries by outcome (ok|failed)",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(ticks, emitted, detectErrors, activeCooldowns, webhookDeliveries)
}

// IncTick counts one polling cycle.
func IncTick() { ticks.Inc() }

// IncSignal counts one emitted signal.
func IncSignal(signalType, direction string) {
	emitted.WithLabelValues(signalType, direction).Inc()
}

// IncError counts one fetch or rule failure.
func IncError() { detectErrors.Inc() }

// SetActiveCooldowns reports the in-memory cooldown map size.
func SetActiveCooldowns(n int) { activeCooldowns.Set(float64(n)) }

// IncWebhookDelivery counts one webhook post outcome.
func IncWebhookDelivery(status string) {
	webhookDeliveries.WithLabelValues(status).Inc()
}
