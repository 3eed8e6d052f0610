// Package metrics exports pool statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/flalloc/pool"
)

// StatsSource is anything that can produce a pool snapshot. Use a
// *pool.Synced when the registry is scraped from another goroutine.
type StatsSource interface {
	Stats() pool.Stats
}

type metric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(pool.Stats) float64
}

// Collector implements prometheus.Collector over a StatsSource. Values are
// read on every scrape; nothing is cached.
type Collector struct {
	src     StatsSource
	metrics []metric
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a collector whose metric names start with namespace.
func NewCollector(namespace string, src StatsSource, constLabels prometheus.Labels) *Collector {
	def := func(name, help string, kind prometheus.ValueType, value func(pool.Stats) float64) metric {
		return metric{
			desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, nil, constLabels),
			kind:  kind,
			value: value,
		}
	}
	gauge, counter := prometheus.GaugeValue, prometheus.CounterValue

	return &Collector{
		src: src,
		metrics: []metric{
			def("capacity_bytes", "Bytes registered with the pool, headers included", gauge,
				func(s pool.Stats) float64 { return float64(s.Capacity) }),
			def("free_bytes", "Sum of free payload capacities", gauge,
				func(s pool.Stats) float64 { return float64(s.FreeBytes) }),
			def("free_blocks", "Length of the free list", gauge,
				func(s pool.Stats) float64 { return float64(s.FreeBlocks) }),
			def("largest_free_block_bytes", "Payload capacity of the largest free block", gauge,
				func(s pool.Stats) float64 { return float64(s.LargestFree) }),
			def("live_allocations", "Blocks currently handed out", gauge,
				func(s pool.Stats) float64 { return float64(s.Live) }),
			def("live_bytes", "Payload bytes currently handed out", gauge,
				func(s pool.Stats) float64 { return float64(s.LiveBytes) }),
			def("arenas_total", "Arenas registered", counter,
				func(s pool.Stats) float64 { return float64(s.Arenas) }),
			def("allocs_total", "Successful allocations", counter,
				func(s pool.Stats) float64 { return float64(s.Allocs) }),
			def("frees_total", "Successful releases", counter,
				func(s pool.Stats) float64 { return float64(s.Frees) }),
			def("alloc_failures_total", "Allocations that found no block large enough", counter,
				func(s pool.Stats) float64 { return float64(s.Failures) }),
			def("splits_total", "Blocks split during allocation", counter,
				func(s pool.Stats) float64 { return float64(s.Splits) }),
			def("merges_total", "Adjacent free blocks merged", counter,
				func(s pool.Stats) float64 { return float64(s.Merges) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(s))
	}
}
