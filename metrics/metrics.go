// Package metrics counts remote API requests and per-row outcomes for a single batch run. Counters
// can be written to a node_exporter textfile when the run completes.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "poi"

// Metrics is safe to use as a nil pointer, in which case every method is a no-op.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	rows     *prometheus.CounterVec
	last_run prometheus.Gauge
}

func New() *Metrics {

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total places API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Total rows processed by tool and result tag",
			},
			[]string{"tool", "tag"},
		),
		last_run: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last batch run completed",
			},
		),
	}

	m.registry.MustRegister(m.requests, m.rows, m.last_run)
	return m
}

// ObserveRequest records a request to 'endpoint'. A non-nil 'err' is counted as an error.
func (m *Metrics) ObserveRequest(endpoint string, err error) {

	if m == nil {
		return
	}

	outcome := "ok"

	if err != nil {
		outcome = "error"
	}

	m.requests.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveRow records one processed row for 'tool' tagged with 'tag'.
func (m *Metrics) ObserveRow(tool string, tag string) {

	if m == nil {
		return
	}

	m.rows.WithLabelValues(tool, tag).Inc()
}

// WriteTextfile marks the run complete and writes every metric to 'path' in the Prometheus text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {

	if m == nil {
		return nil
	}

	m.last_run.SetToCurrentTime()

	err := prometheus.WriteToTextfile(path, m.registry)

	if err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}
