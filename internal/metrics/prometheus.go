package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder exports Recorder events as Prometheus collectors.
type PrometheusRecorder struct {
	registrations   *prometheus.CounterVec
	logins          *prometheus.CounterVec
	upstreamFetches *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	droppedUnits    *prometheus.CounterVec
}

// NewPrometheus registers the application collectors on reg.
// Passing a fresh registry keeps tests isolated from the default one.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsedash_registrations_total",
				Help: "Total number of registration attempts by outcome",
			},
			[]string{"status"},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsedash_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"status"},
		),
		upstreamFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsedash_upstream_fetches_total",
				Help: "Total number of upstream provider calls by outcome",
			},
			[]string{"provider", "status"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulsedash_upstream_fetch_duration_seconds",
				Help:    "Upstream provider call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		droppedUnits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsedash_upstream_units_dropped_total",
				Help: "Total number of aggregation units dropped after a failed fetch",
			},
			[]string{"provider"},
		),
	}
}

// IncRegistration increments the registration counter.
func (p *PrometheusRecorder) IncRegistration(status string) {
	p.registrations.WithLabelValues(status).Inc()
}

// IncLogin increments the login counter.
func (p *PrometheusRecorder) IncLogin(status string) {
	p.logins.WithLabelValues(status).Inc()
}

// ObserveUpstreamFetch records the outcome and latency of an upstream call.
func (p *PrometheusRecorder) ObserveUpstreamFetch(provider, status string, duration time.Duration) {
	p.upstreamFetches.WithLabelValues(provider, status).Inc()
	p.upstreamLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// IncUpstreamUnitDropped increments the dropped unit counter.
func (p *PrometheusRecorder) IncUpstreamUnitDropped(provider string) {
	p.droppedUnits.WithLabelValues(provider).Inc()
}
