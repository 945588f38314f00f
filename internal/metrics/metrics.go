// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus collectors for the category cache.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"localmarket/internal/offline"
)

// Metric names.
const (
	MetricOfflineResults = "catalog_offline_results_total"
	MetricFetchDuration  = "catalog_fetch_duration_seconds"
	MetricTreeNodes      = "catalog_tree_nodes"
)

// Metrics implements offline.Recorder and tracks the size of the served tree.
type Metrics struct {
	results       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	treeNodes     prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricOfflineResults,
				Help: "Offline-first lookups by data source and staleness.",
			},
			[]string{"source", "stale"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricFetchDuration,
				Help:    "Duration of remote category fetches in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		treeNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricTreeNodes,
				Help: "Number of nodes in the most recently served category tree.",
			},
		),
	}
	reg.MustRegister(m.results, m.fetchDuration, m.treeNodes)
	return m
}

// ObserveResult implements offline.Recorder.
func (m *Metrics) ObserveResult(source offline.Source, stale bool) {
	m.results.WithLabelValues(string(source), strconv.FormatBool(stale)).Inc()
}

// ObserveFetch implements offline.Recorder.
func (m *Metrics) ObserveFetch(elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// SetTreeNodes records the node count of the tree just served.
func (m *Metrics) SetTreeNodes(n int) {
	m.treeNodes.Set(float64(n))
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
