package api

import (
	"time"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/prometheus/client_golang/prometheus"
)

const outcomeError = "error"

// metrics are registered on a registry owned by the server so several
// servers can live in one process.
type metrics struct {
	registry    *prometheus.Registry
	extractions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stmtx_extractions_total",
			Help: "Processed statements by bank and outcome.",
		}, []string{"bank", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stmtx_extraction_duration_seconds",
			Help:    "Time spent extracting one statement.",
			Buckets: prometheus.DefBuckets,
		}, []string{"bank"}),
	}
	m.registry.MustRegister(m.extractions, m.duration)
	return m
}

func (m *metrics) observe(bank common.Bank, outcome string, started time.Time) {
	m.extractions.WithLabelValues(string(bank), outcome).Inc()
	m.duration.WithLabelValues(string(bank)).Observe(time.Since(started).Seconds())
}
