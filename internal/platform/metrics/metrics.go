// Package metrics owns the Prometheus registry and the partner-level counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes reg on /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics holds the partner-management counters.
type Metrics struct {
	PartnersCreated     prometheus.Counter
	PartnersDeleted     prometheus.Counter
	VerificationsStored *prometheus.CounterVec
	EditSessionsOpen    prometheus.Gauge
	EditSessionsExpired prometheus.Counter
	RateLimited         *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PartnersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "partnerdesk_partners_created_total",
			Help: "Total number of partners created",
		}),
		PartnersDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "partnerdesk_partners_deleted_total",
			Help: "Total number of partners deleted",
		}),
		VerificationsStored: f.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdesk_verification_events_total",
			Help: "Verification events recorded on partners, by outcome",
		}, []string{"verified"}),
		EditSessionsOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "partnerdesk_edit_sessions_open",
			Help: "Edit sessions currently held in memory",
		}),
		EditSessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "partnerdesk_edit_sessions_expired_total",
			Help: "Edit sessions discarded by the idle sweeper",
		}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdesk_rate_limited_total",
			Help: "Requests rejected by a rate limiter, by scope",
		}, []string{"scope"}),
	}
}

func (m *Metrics) IncrementPartnersCreated() {
	if m == nil {
		return
	}
	m.PartnersCreated.Inc()
}

func (m *Metrics) IncrementPartnersDeleted() {
	if m == nil {
		return
	}
	m.PartnersDeleted.Inc()
}

func (m *Metrics) IncrementVerificationStored(verified bool) {
	if m == nil {
		return
	}
	label := "false"
	if verified {
		label = "true"
	}
	m.VerificationsStored.WithLabelValues(label).Inc()
}

func (m *Metrics) SetEditSessionsOpen(n int) {
	if m == nil {
		return
	}
	m.EditSessionsOpen.Set(float64(n))
}

func (m *Metrics) AddEditSessionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EditSessionsExpired.Add(float64(n))
}

func (m *Metrics) IncrementRateLimited(scope string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(scope).Inc()
}
