// Package metrics exposes the planner's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the counters and their registry.
type Metrics struct {
	registry *prometheus.Registry

	itinerariesGenerated prometheus.Counter
	insertFailures       prometheus.Counter
	exports              *prometheus.CounterVec
	authAttempts         *prometheus.CounterVec
	workspaces           prometheus.Gauge
}

// New registers the counters on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		itinerariesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripweaver",
			Name:      "itineraries_generated_total",
			Help:      "Itineraries generated and saved.",
		}),
		insertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripweaver",
			Name:      "itinerary_insert_failures_total",
			Help:      "Itineraries that could not be saved.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripweaver",
			Name:      "exports_total",
			Help:      "Itinerary exports by kind (share, pdf).",
		}, []string{"kind"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripweaver",
			Name:      "auth_attempts_total",
			Help:      "Sign-in and sign-up attempts by action and outcome.",
		}, []string{"action", "outcome"}),
		workspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tripweaver",
			Name:      "workspaces_mounted",
			Help:      "Workspaces currently mounted.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.itinerariesGenerated,
		m.insertFailures,
		m.exports,
		m.authAttempts,
		m.workspaces,
	)
	return m
}

// ItineraryGenerated counts a saved itinerary.
func (m *Metrics) ItineraryGenerated() { m.itinerariesGenerated.Inc() }

// InsertFailed counts a failed itinerary save.
func (m *Metrics) InsertFailed() { m.insertFailures.Inc() }

// Exported counts an export of the given kind.
func (m *Metrics) Exported(kind string) { m.exports.WithLabelValues(kind).Inc() }

// AuthAttempt counts a gate action.
func (m *Metrics) AuthAttempt(action string, ok bool) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.authAttempts.WithLabelValues(action, outcome).Inc()
}

// WorkspaceMounted and WorkspaceUnmounted track live workspaces.
func (m *Metrics) WorkspaceMounted()   { m.workspaces.Inc() }
func (m *Metrics) WorkspaceUnmounted() { m.workspaces.Dec() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
