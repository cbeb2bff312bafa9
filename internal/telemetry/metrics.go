// Package telemetry exposes prometheus counters for the pipeline.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks pipeline activity.
type Metrics struct {
	registry *prometheus.Registry

	ProposalsPresented prometheus.Counter
	DecisionsCommitted prometheus.Counter
	TasksRegistered    prometheus.Counter
	CommitFailures     *prometheus.CounterVec
}

// NewMetrics creates metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ProposalsPresented: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minuted_proposals_presented_total",
			Help: "Proposals presented for approval.",
		}),
		DecisionsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minuted_decisions_committed_total",
			Help: "Decisions committed to the document store.",
		}),
		TasksRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minuted_tasks_registered_total",
			Help: "Tasks registered in the record store.",
		}),
		CommitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minuted_commit_failures_total",
			Help: "Per-item commit failures by sink.",
		}, []string{"sink"}),
	}

	m.registry.MustRegister(
		m.ProposalsPresented,
		m.DecisionsCommitted,
		m.TasksRegistered,
		m.CommitFailures,
	)
	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
