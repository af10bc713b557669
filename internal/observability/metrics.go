// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/litter-getter/pkg/types"
)

const namespace = "litter_getter"

// Request outcomes recorded by ObserveRequest.
const (
	OutcomeOK          = "ok"
	OutcomeHTTPError   = "http_error"
	OutcomeTransport   = "transport_error"
	OutcomeRateLimited = "rate_limited"
)

// Metrics holds the counters for one CLI run. A batch tool has no scrape
// endpoint, so the registry is written out as a node-exporter textfile.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	records  *prometheus.CounterVec
}

// NewMetrics creates the counters on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "E-utilities HTTP requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_parsed_total",
			Help:      "Citation records parsed by document type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(m.requests, m.records)
	return m
}

// ObserveRequest counts one HTTP call. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveRecord counts one parsed record. Safe on a nil receiver.
func (m *Metrics) ObserveRecord(t types.DocumentType) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(string(t)).Inc()
}

// Requests exposes the request counter, labeled by endpoint and outcome.
func (m *Metrics) Requests() *prometheus.CounterVec { return m.requests }

// Records exposes the parsed-record counter, labeled by document type.
func (m *Metrics) Records() *prometheus.CounterVec { return m.records }

// Registry exposes the underlying gatherer.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes all counters to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
