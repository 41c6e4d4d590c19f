package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for VAT verification.
type Metrics struct {
	// Registry lookups by provider and outcome
	LookupOutcome *prometheus.CounterVec

	// Registry lookup latency by provider
	LookupLatency *prometheus.HistogramVec

	// Result cache hits and misses by backend
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// 1 while a provider's circuit is open
	CircuitOpen *prometheus.GaugeVec
}

// New registers the VAT metrics with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdesk_vat_lookups_total",
			Help: "Registry lookups by provider and outcome",
		}, []string{"provider", "outcome"}), // outcome: verified, rejected, error, circuit_open, cached

		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "partnerdesk_vat_lookup_duration_seconds",
			Help:    "Duration of registry lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),

		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdesk_vat_cache_hits_total",
			Help: "Verification result cache hits",
		}, []string{"backend"}),

		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdesk_vat_cache_misses_total",
			Help: "Verification result cache misses",
		}, []string{"backend"}),

		CircuitOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "partnerdesk_vat_circuit_open",
			Help: "Whether the provider circuit breaker is open",
		}, []string{"provider"}),
	}
}

func (m *Metrics) IncrementOutcome(provider, outcome string) {
	if m != nil {
		m.LookupOutcome.WithLabelValues(provider, outcome).Inc()
	}
}

func (m *Metrics) ObserveLookupLatency(provider string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

func (m *Metrics) RecordCacheHit(backend string) {
	if m != nil {
		m.CacheHits.WithLabelValues(backend).Inc()
	}
}

func (m *Metrics) RecordCacheMiss(backend string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(backend).Inc()
	}
}

func (m *Metrics) SetCircuitOpen(provider string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.CircuitOpen.WithLabelValues(provider).Set(v)
}
