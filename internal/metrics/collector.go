// Package metrics exposes the transfer queue as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ytget/s3-upload-tool/internal/model"
)

const namespace = "s3xfer"

// Source is the part of the transfer queue the collector reads.
type Source interface {
	Queue() model.QueueSnapshot
	UpdateStatistics() model.TransferStatistics
}

// Collector reads a fresh snapshot of the queue on every scrape.
type Collector struct {
	source Source

	active          *prometheus.Desc
	limit           *prometheus.Desc
	pending         *prometheus.Desc
	overallProgress *prometheus.Desc
	overallSpeed    *prometheus.Desc
	files           *prometheus.Desc
	totalBytes      *prometheus.Desc
	transferred     *prometheus.Desc
	averageSpeed    *prometheus.Desc
	elapsed         *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(source Source) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}

	return &Collector{
		source:          source,
		active:          desc("active_transfers", "Transfers currently holding a slot."),
		limit:           desc("concurrency_limit", "Maximum number of concurrent transfers."),
		pending:         desc("pending_transfers", "Transfers waiting for a slot."),
		overallProgress: desc("overall_progress_percent", "Mean progress over unfinished transfers."),
		overallSpeed:    desc("overall_speed_bytes_per_second", "Sum of the speeds of running transfers."),
		files:           desc("files", "Transfers known to the queue by outcome.", "outcome"),
		totalBytes:      desc("known_bytes", "Bytes of every known transfer."),
		transferred:     desc("transferred_bytes_total", "Bytes moved since the statistics were reset."),
		averageSpeed:    desc("average_speed_bytes_per_second", "Transferred bytes over the elapsed time."),
		elapsed:         desc("elapsed_seconds", "Seconds since the statistics were reset."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.limit
	ch <- c.pending
	ch <- c.overallProgress
	ch <- c.overallSpeed
	ch <- c.files
	ch <- c.totalBytes
	ch <- c.transferred
	ch <- c.averageSpeed
	ch <- c.elapsed
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	q := c.source.Queue()
	s := c.source.UpdateStatistics()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	gauge(c.active, float64(q.Active))
	gauge(c.limit, float64(q.Limit))
	gauge(c.pending, float64(q.Pending))
	gauge(c.overallProgress, q.OverallProgress)
	gauge(c.overallSpeed, q.OverallSpeed)

	gauge(c.files, float64(s.TotalFiles), "all")
	gauge(c.files, float64(s.CompletedFiles), "completed")
	gauge(c.files, float64(s.FailedFiles), "failed")
	gauge(c.totalBytes, float64(s.TotalBytes))
	ch <- prometheus.MustNewConstMetric(c.transferred, prometheus.CounterValue, float64(s.TransferredBytes))
	gauge(c.averageSpeed, s.AverageSpeed)
	gauge(c.elapsed, s.Elapsed.Seconds())
}
