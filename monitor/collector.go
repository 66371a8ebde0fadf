// Package monitor exposes batch.Registry as an HTTP management surface
// (spec.md §4.8/§6's MBean-style "<domain>:name=<jobName>,id=<executionId>"
// read-only view, realized over HTTP since Go has no JMX), grounded on
// blueprint/provider/httpserver (gin) and blueprint/provider/prometheus
// (prometheus/client_golang).
package monitor

import (
	"github.com/oddbit-project/batchcore/batch"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector adapts a batch.Registry's live Snapshots into Prometheus
// gauges, one metric family per counter, labeled by job name and
// execution id — following the custom-collector shape of
// samples/prometheus's AppMetrics, but computed on demand from the
// registry instead of held as standing state.
type Collector struct {
	registry *batch.Registry

	readCount     *prometheus.Desc
	writeCount    *prometheus.Desc
	filteredCount *prometheus.Desc
	errorCount    *prometheus.Desc
	status        *prometheus.Desc
}

// NewCollector builds a Collector reading from registry at scrape time.
func NewCollector(registry *batch.Registry) *Collector {
	labels := []string{"job", "execution_id"}
	return &Collector{
		registry: registry,
		readCount: prometheus.NewDesc(
			"batchcore_job_read_total", "Records read by the job", labels, nil),
		writeCount: prometheus.NewDesc(
			"batchcore_job_write_total", "Records written by the job", labels, nil),
		filteredCount: prometheus.NewDesc(
			"batchcore_job_filtered_total", "Records filtered out by the job", labels, nil),
		errorCount: prometheus.NewDesc(
			"batchcore_job_error_total", "Errors encountered by the job", labels, nil),
		status: prometheus.NewDesc(
			"batchcore_job_status", "Current Status (as its integer value) of the job", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.readCount
	ch <- c.writeCount
	ch <- c.filteredCount
	ch <- c.errorCount
	ch <- c.status
}

// Collect implements prometheus.Collector: one sample set per
// currently-registered job, read fresh from the registry every scrape.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, snap := range c.registry.Snapshot() {
		labels := []string{snap.JobName, snap.ExecutionID.String()}
		_ = name // management name is the registry key, not a metric label
		ch <- prometheus.MustNewConstMetric(c.readCount, prometheus.CounterValue, float64(snap.ReadCount), labels...)
		ch <- prometheus.MustNewConstMetric(c.writeCount, prometheus.CounterValue, float64(snap.WriteCount), labels...)
		ch <- prometheus.MustNewConstMetric(c.filteredCount, prometheus.CounterValue, float64(snap.FilteredCount), labels...)
		ch <- prometheus.MustNewConstMetric(c.errorCount, prometheus.CounterValue, float64(snap.ErrorCount), labels...)
		ch <- prometheus.MustNewConstMetric(c.status, prometheus.GaugeValue, float64(snap.Status), labels...)
	}
}
