package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification outcomes recorded by ObserveVerification.
const (
	OutcomeVerified     = "verified"
	OutcomeInvalidCode  = "invalid_code"
	OutcomeUnparseable  = "unparseable"
	OutcomeNotSaved     = "not_saved"
	OutcomeStoreError   = "store_error"
	OutcomeUnauthorized = "unauthorized"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	CodesIssued      prometheus.Counter
	DispatchFailures prometheus.Counter
	Verifications    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the metrics on a dedicated registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		CodesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "tutor_radar_varsity_codes_issued_total",
			Help: "Total number of varsity verification codes persisted",
		}),
		DispatchFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "tutor_radar_varsity_code_dispatch_failures_total",
			Help: "Total number of verification codes that could not be delivered",
		}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_radar_varsity_verifications_total",
			Help: "Varsity verification attempts by outcome",
		}, []string{"outcome"}),
		registry: reg,
	}
}

func (m *Metrics) IncCodesIssued() {
	m.CodesIssued.Inc()
}

func (m *Metrics) IncDispatchFailures() {
	m.DispatchFailures.Inc()
}

func (m *Metrics) ObserveVerification(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
