// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the application's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	WorkflowActions     *prometheus.CounterVec
	CollaboratorCalls   *prometheus.HistogramVec
	CatalogItems        prometheus.Gauge
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WorkflowActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oficina",
			Name:      "workflow_actions_total",
			Help:      "Inventory workflow actions by action and outcome.",
		}, []string{"action", "outcome"}),
		CollaboratorCalls: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "oficina",
			Name:      "collaborator_call_duration_seconds",
			Help:      "Duration of stock item backend calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		CatalogItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "oficina",
			Name:      "catalog_items",
			Help:      "Number of stock items in the last loaded catalog.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oficina",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "oficina",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Action counts one workflow action outcome.
func (m *Metrics) Action(action, outcome string) {
	if m == nil {
		return
	}
	m.WorkflowActions.WithLabelValues(action, outcome).Inc()
}

// Call records a collaborator call.
func (m *Metrics) Call(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CollaboratorCalls.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

// CatalogSize sets the catalog gauge.
func (m *Metrics) CatalogSize(n int) {
	if m == nil {
		return
	}
	m.CatalogItems.Set(float64(n))
}

// Request records a served HTTP request.
func (m *Metrics) Request(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}
