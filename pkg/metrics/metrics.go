// Package metrics holds the Prometheus collectors of the console.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "operion_console"

// Reconcile operation labels.
const (
	OpDeleteMessage = "delete_message"
	OpApplyForm     = "apply_form"
	OpUpdate        = "update"
)

// Save result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	reconcile    *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveDuration prometheus.Histogram
	events       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		reconcile: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_operations_total",
			Help:      "Correlation reconcile operations applied to editor sessions.",
		}, []string{"operation"}),
		saves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_group_saves_total",
			Help:      "Full-document process group saves by result.",
		}, []string{"result"}),
		saveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_group_save_duration_seconds",
			Help:      "Latency of full-document process group saves.",
			Buckets:   prometheus.DefBuckets,
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Console events published by type and result.",
		}, []string{"event_type", "result"}),
	}
}

func (m *Metrics) ObserveReconcile(operation string) {
	if m == nil {
		return
	}

	m.reconcile.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveSave(err error, elapsed time.Duration) {
	if m == nil {
		return
	}

	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.saves.WithLabelValues(result).Inc()
	m.saveDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObservePublish(eventType string, err error) {
	if m == nil {
		return
	}

	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.events.WithLabelValues(eventType, result).Inc()
}
