// Package metrics exposes import runs to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wallabag_importer/internal/domain"
)

// Collector implements service.MetricsCollector.
type Collector struct {
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	entries     *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallabag_import_runs_total",
			Help: "Import runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallabag_import_run_duration_seconds",
			Help:    "Duration of import runs.",
			Buckets: prometheus.DefBuckets,
		}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallabag_import_entries_total",
			Help: "Fetched entries by result.",
		}, []string{"result"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wallabag_import_last_success_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
	}

	reg.MustRegister(c.runs, c.runDuration, c.entries, c.lastSuccess)

	return c
}

func (c *Collector) RecordRun(outcome domain.RunOutcome, duration time.Duration) {
	c.runs.WithLabelValues(string(outcome)).Inc()
	c.runDuration.Observe(duration.Seconds())
	if outcome == domain.OutcomeCompleted {
		c.lastSuccess.SetToCurrentTime()
	}
}

func (c *Collector) RecordEntries(imported, skipped, invalid, failed int) {
	c.entries.WithLabelValues("imported").Add(float64(imported))
	c.entries.WithLabelValues("skipped").Add(float64(skipped))
	c.entries.WithLabelValues("invalid").Add(float64(invalid))
	c.entries.WithLabelValues("failed").Add(float64(failed))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
