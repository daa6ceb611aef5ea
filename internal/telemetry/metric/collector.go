package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector reports values read on demand at scrape time.
type Collector struct {
	cacheEntries *prometheus.Desc
	entries      func() int
}

// NewCollector creates a collector that reports the instance cache size
// returned by entries.
func NewCollector(entries func() int) *Collector {
	return &Collector{
		cacheEntries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "entries"),
			"Resolved configurations held by the instance cache",
			nil, nil,
		),
		entries: entries,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cacheEntries
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	n := 0
	if c.entries != nil {
		n = c.entries()
	}
	ch <- prometheus.MustNewConstMetric(c.cacheEntries, prometheus.GaugeValue, float64(n))
}
