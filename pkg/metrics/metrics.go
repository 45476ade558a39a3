// Package metrics exports payload pool and pipeline statistics as
// Prometheus metrics.
//
// # Basic Usage
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(metrics.NewPoolCollector("payload", pools))
//	pm := metrics.NewPipelineMetrics("payload", reg)
//
//	timer := metrics.NewTimer()
//	req, err := triggers.CreateFromRecords(hdr, records, src)
//	pm.ObserveStage("trigger", timer.Stop())
//
// Pool statistics are read from the pool registry on every scrape, so the
// exported values are never stale.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dglo/payload-sub005/pkg/pool"
)

// PoolCollector is a prometheus.Collector reporting every pool in a
// pool.Registry, labelled by payload kind.
type PoolCollector struct {
	pools     *pool.Registry
	allocated *prometheus.Desc
	live      *prometheus.Desc
	inUse     *prometheus.Desc
	idle      *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	dropped   *prometheus.Desc
}

// NewPoolCollector creates a collector over pools.
func NewPoolCollector(namespace string, pools *pool.Registry) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, []string{"kind"}, nil)
	}
	return &PoolCollector{
		pools:     pools,
		allocated: desc("allocated_total", "Instances ever allocated by the pool"),
		live:      desc("live", "Instances currently owned by the pool or its callers"),
		inUse:     desc("in_use", "Instances currently handed out"),
		idle:      desc("idle", "Instances waiting in the pool"),
		hits:      desc("hits_total", "Acquisitions served from the idle store"),
		misses:    desc("misses_total", "Acquisitions that allocated a new instance"),
		dropped:   desc("dropped_total", "Instances discarded instead of being kept idle"),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocated
	ch <- c.live
	ch <- c.inUse
	ch <- c.idle
	ch <- c.hits
	ch <- c.misses
	ch <- c.dropped
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.pools.Stats() {
		ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.CounterValue, float64(s.Allocated), s.Kind)
		ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(s.Live), s.Kind)
		ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse), s.Kind)
		ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle), s.Kind)
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), s.Kind)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), s.Kind)
		ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped), s.Kind)
	}
}

// PipelineMetrics holds the counters of the simulated trigger pipeline.
type PipelineMetrics struct {
	// PayloadsCreated counts payloads built, by kind
	PayloadsCreated *prometheus.CounterVec
	// Failures counts failed constructions, by stage and error type
	Failures *prometheus.CounterVec
	// Throughput is the last measured payload rate, by stage
	Throughput *prometheus.GaugeVec
	// StageLatency is the time spent building one payload, by stage
	StageLatency *prometheus.HistogramVec
}

// NewPipelineMetrics creates and registers the pipeline metrics with reg.
func NewPipelineMetrics(namespace string, reg prometheus.Registerer) *PipelineMetrics {
	f := promauto.With(reg)
	return &PipelineMetrics{
		PayloadsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_created_total",
			Help:      "Total number of payloads created",
		}, []string{"kind"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "construction_failures_total",
			Help:      "Total number of payload constructions that were rolled back",
		}, []string{"stage", "type"}),
		Throughput: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput_payloads_per_second",
			Help:      "Current throughput in payloads per second",
		}, []string{"stage"}),
		StageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_nanoseconds",
			Help:      "Payload construction latency in nanoseconds",
			Buckets: []float64{
				100,    // 100ns - pooled reuse
				1000,   // 1μs - fresh allocation
				10000,  // 10μs - small composite
				100000, // 100μs - large composite
				1e6,    // 1ms
				1e7,    // 10ms
			},
		}, []string{"stage"}),
	}
}

// ObserveStage records one construction in stage that took d.
func (m *PipelineMetrics) ObserveStage(stage string, d time.Duration) {
	m.StageLatency.WithLabelValues(stage).Observe(float64(d.Nanoseconds()))
}

// Timer measures the duration of one operation.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called
// more than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ThroughputTracker tracks payloads per second over time windows.
// Safe for concurrent use.
type ThroughputTracker struct {
	mu        sync.Mutex
	count     int64
	lastReset time.Time
	gauge     prometheus.Gauge
}

// NewThroughputTracker creates a tracker that publishes to gauge, which
// may be nil.
func NewThroughputTracker(gauge prometheus.Gauge) *ThroughputTracker {
	return &ThroughputTracker{
		lastReset: time.Now(),
		gauge:     gauge,
	}
}

// Increment adds n to the payload count.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset returns the throughput since the last reset, publishes it and
// starts a new window.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastReset).Seconds()
	if elapsed == 0 {
		return 0
	}

	throughput := float64(t.count) / elapsed

	t.count = 0
	t.lastReset = time.Now()

	if t.gauge != nil {
		t.gauge.Set(throughput)
	}
	return throughput
}
