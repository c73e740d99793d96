// Package metrics holds the Prometheus collectors for documentation runs, tasks, and generation requests. Collectors live on a private registry so tests and
// embedding callers never collide with the default one. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	TasksTotal      *prometheus.CounterVec
	TaskDuration    *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autodoc_runs_total",
				Help: "Total number of documentation runs by final state",
			},
			[]string{"state"},
		),
		TasksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autodoc_tasks_total",
				Help: "Total number of documentation tasks by kind and terminal status",
			},
			[]string{"kind", "status"},
		),
		TaskDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autodoc_task_duration_seconds",
				Help:    "Wall time of one documentation task, generation and mutation included",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"kind"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autodoc_generation_requests_total",
				Help: "Total number of generation request attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autodoc_generation_request_duration_seconds",
				Help:    "Latency of one generation request attempt",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		RetriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autodoc_generation_retries_total",
				Help: "Total number of generation retries by error kind",
			},
			[]string{"kind"},
		),
	}
}

// RecordRun counts a finished run. state is "completed" or "cancelled".
func (m *Metrics) RecordRun(state string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) RecordTask(kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(kind, status).Inc()
	m.TaskDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordRequest counts one request attempt. outcome is "ok" or the error kind.
func (m *Metrics) RecordRequest(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.RequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordRetry(kind string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(kind).Inc()
}

// WriteFile writes every collector to path in the Prometheus text exposition format (suitable for node_exporter's textfile collector).
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
