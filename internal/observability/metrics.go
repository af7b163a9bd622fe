// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sandboxgame/sandbox/pkg/errutil"
)

// Metrics contains the content loading metrics. It observes the definition
// database and records every full load.
type Metrics struct {
	DefsLoaded         *prometheus.CounterVec
	DuplicatesRejected *prometheus.CounterVec
	ContentErrorsTotal *prometheus.CounterVec
	LoadsTotal         *prometheus.CounterVec
	LoadDuration       prometheus.Histogram
	ContentReady       prometheus.Gauge
}

// NewMetrics creates and registers the content metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DefsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandbox_defs_loaded_total",
				Help: "Total number of records registered by kind",
			},
			[]string{"kind"},
		),
		DuplicatesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandbox_defs_duplicates_total",
				Help: "Total number of records rejected because their name was taken, by kind",
			},
			[]string{"kind"},
		),
		ContentErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandbox_content_errors_total",
				Help: "Total number of recoverable content errors by kind",
			},
			[]string{"kind"},
		),
		LoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandbox_content_loads_total",
				Help: "Total number of full content loads by status and error code",
			},
			[]string{"status", "code"},
		),
		LoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sandbox_content_load_duration_seconds",
				Help:    "Duration of full content loads",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		ContentReady: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sandbox_content_ready",
				Help: "1 when the last content load succeeded",
			},
		),
	}

	reg.MustRegister(
		m.DefsLoaded,
		m.DuplicatesRejected,
		m.ContentErrorsTotal,
		m.LoadsTotal,
		m.LoadDuration,
		m.ContentReady,
	)
	return m
}

// DefLoaded counts a registered record.
func (m *Metrics) DefLoaded(kind string) {
	m.DefsLoaded.WithLabelValues(kind).Inc()
}

// DuplicateRejected counts a record dropped for a taken name.
func (m *Metrics) DuplicateRejected(kind string) {
	m.DuplicatesRejected.WithLabelValues(kind).Inc()
}

// ContentErrors counts recoverable content errors.
func (m *Metrics) ContentErrors(kind string, n int) {
	m.ContentErrorsTotal.WithLabelValues(kind).Add(float64(n))
}

// LoadFinished records the outcome of a full load.
func (m *Metrics) LoadFinished(d time.Duration, err error) {
	m.LoadDuration.Observe(d.Seconds())
	if err != nil {
		code := errutil.Code(err)
		if code == "" {
			code = errutil.UncodedError
		}
		m.LoadsTotal.WithLabelValues("failure", code).Inc()
		m.ContentReady.Set(0)
		return
	}
	m.LoadsTotal.WithLabelValues("success", "").Inc()
	m.ContentReady.Set(1)
}
