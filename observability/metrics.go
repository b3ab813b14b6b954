package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tolelom/curvemarket/events"
)

// Metrics holds the Prometheus instruments for the marketplace daemon.
type Metrics struct {
	OpsApplied    *prometheus.CounterVec
	OpsRejected   *prometheus.CounterVec
	OpDuration    *prometheus.HistogramVec
	RPCRequests   *prometheus.CounterVec
	TokensMinted  prometheus.Counter
	PaymentVolume prometheus.Counter
}

// NewMetrics creates and registers all metrics on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		OpsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "curvemarket_ops_applied_total",
			Help: "Operations successfully committed",
		}, []string{"type"}),
		OpsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "curvemarket_ops_rejected_total",
			Help: "Operations rejected and rolled back",
		}, []string{"type", "reason"}),
		OpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "curvemarket_op_duration_seconds",
			Help:    "End-to-end execution time per operation, including commit",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"type"}),
		RPCRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "curvemarket_rpc_requests_total",
			Help: "JSON-RPC requests by method and outcome",
		}, []string{"method", "outcome"}),
		TokensMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "curvemarket_tokens_minted_total",
			Help: "Character tokens created",
		}),
		PaymentVolume: promauto.NewCounter(prometheus.CounterOpts{
			Name: "curvemarket_payment_volume_total",
			Help: "Native currency settled out of escrow, in base units",
		}),
	}
}

// WatchEvents feeds the market activity counters from the event stream.
// Call once, before the executor starts applying operations.
func (m *Metrics) WatchEvents(em *events.Emitter) {
	em.Subscribe(events.EventTokenMinted, func(events.Event) {
		m.TokensMinted.Inc()
	})
	em.Subscribe(events.EventPayment, func(ev events.Event) {
		if amount, ok := ev.Data["amount"].(uint64); ok {
			m.PaymentVolume.Add(float64(amount))
		}
	})
}
