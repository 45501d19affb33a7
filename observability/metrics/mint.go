package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MintMetrics collects the service's operational counters.
type MintMetrics struct {
	httpRequests      *prometheus.CounterVec
	proofRequests     *prometheus.CounterVec
	reconcileOutcomes *prometheus.CounterVec
	availableSupply   prometheus.Gauge
}

var (
	mintOnce     sync.Once
	mintRegistry *MintMetrics
)

// Mint returns the process-wide mint metrics, registering them on first use.
func Mint() *MintMetrics {
	mintOnce.Do(func() {
		mintRegistry = &MintMetrics{
			httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "mintgate_http_requests_total",
				Help: "Count of handled HTTP requests by route and status code.",
			}, []string{"route", "code"}),
			proofRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "mintgate_proof_requests_total",
				Help: "Count of Merkle proof requests by phase and outcome.",
			}, []string{"phase", "outcome"}),
			reconcileOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "mintgate_reconcile_outcomes_total",
				Help: "Count of per-token reconciliation outcomes.",
			}, []string{"outcome"}),
			availableSupply: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "mintgate_available_supply",
				Help: "Token IDs still available to mint at last read.",
			}),
		}
		prometheus.MustRegister(
			mintRegistry.httpRequests,
			mintRegistry.proofRequests,
			mintRegistry.reconcileOutcomes,
			mintRegistry.availableSupply,
		)
	})
	return mintRegistry
}

// ObserveRequest records one handled HTTP request.
func (m *MintMetrics) ObserveRequest(route, code string) {
	m.httpRequests.WithLabelValues(route, code).Inc()
}

// ObserveProof records one proof request outcome.
func (m *MintMetrics) ObserveProof(phase, outcome string) {
	m.proofRequests.WithLabelValues(phase, outcome).Inc()
}

// ObserveReconcile records one per-token reconciliation outcome.
func (m *MintMetrics) ObserveReconcile(outcome string) {
	m.reconcileOutcomes.WithLabelValues(outcome).Inc()
}

// SetAvailableSupply publishes the current available-token count.
func (m *MintMetrics) SetAvailableSupply(count int) {
	m.availableSupply.Set(float64(count))
}
