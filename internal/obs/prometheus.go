package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tradeflow"

var (
	publishedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "stage", "published_total"),
		"Values published by a pipeline stage.",
		[]string{"stage"}, nil,
	)
	listenerCallsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "stage", "listener_calls_total"),
		"Listener callbacks invoked by a pipeline stage.",
		[]string{"stage"}, nil,
	)
	fanoutDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "stage", "fanout_seconds_total"),
		"Time spent fanning values out to listeners.",
		[]string{"stage"}, nil,
	)
	fanoutMaxDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "stage", "fanout_max_seconds"),
		"Slowest single fan-out observed.",
		[]string{"stage"}, nil,
	)
	feedRowsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "feed", "rows_total"),
		"Inbound feed rows by outcome.",
		[]string{"outcome"}, nil,
	)
	sinkDropsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "history", "dropped_total"),
		"Records dropped by historical sinks.",
		nil, nil,
	)
)

// Collector exports Metrics to Prometheus.
type Collector struct {
	m *Metrics
}

// NewCollector wraps m as a prometheus.Collector.
func NewCollector(m *Metrics) *Collector {
	return &Collector{m: m}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- publishedDesc
	ch <- listenerCallsDesc
	ch <- fanoutDesc
	ch <- fanoutMaxDesc
	ch <- feedRowsDesc
	ch <- sinkDropsDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.m.Snapshot()
	for t, s := range snap.Stages {
		stage := t.String()
		ch <- prometheus.MustNewConstMetric(publishedDesc, prometheus.CounterValue, float64(s.Published), stage)
		ch <- prometheus.MustNewConstMetric(listenerCallsDesc, prometheus.CounterValue, float64(s.ListenerCalls), stage)
		ch <- prometheus.MustNewConstMetric(fanoutDesc, prometheus.CounterValue, s.Fanout.Sum.Seconds(), stage)
		ch <- prometheus.MustNewConstMetric(fanoutMaxDesc, prometheus.GaugeValue, s.Fanout.Max.Seconds(), stage)
	}
	ch <- prometheus.MustNewConstMetric(feedRowsDesc, prometheus.CounterValue, float64(snap.FeedAccepted), "accepted")
	ch <- prometheus.MustNewConstMetric(feedRowsDesc, prometheus.CounterValue, float64(snap.FeedSkipped), "skipped")
	ch <- prometheus.MustNewConstMetric(sinkDropsDesc, prometheus.CounterValue, float64(snap.SinkDrops))
}

// NewRegistry returns a registry exporting m plus the Go runtime collectors.
func NewRegistry(m *Metrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(m))
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}
