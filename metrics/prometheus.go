// Package metrics exposes the engine's commit-skip optimization and
// book shape to Prometheus. Without this, §4.7's "skip the write when
// the slot value is unchanged" rule is invisible from outside the
// process — these counters are the only way an operator can tell the
// optimization is doing anything.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds every metric this engine exposes.
type Collector struct {
	SlotsLoaded  *prometheus.CounterVec
	SlotsWritten *prometheus.CounterVec
	SlotsSkipped *prometheus.CounterVec

	CommitLatency *prometheus.HistogramVec

	BookDepth *prometheus.GaugeVec
	BestTick  *prometheus.GaugeVec

	BatchCallsTotal *prometheus.CounterVec
	BatchExitCode   *prometheus.CounterVec
	InvariantFaults prometheus.Counter
}

// GetCollector returns the process-wide singleton collector.
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{}

	c.SlotsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clob",
			Subsystem: "slotstore",
			Name:      "slots_loaded_total",
			Help:      "Number of Sload calls the engine issued for market and trader state slots",
		},
		[]string{"market"},
	)
	c.SlotsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clob",
			Subsystem: "slotstore",
			Name:      "slots_written_total",
			Help:      "Number of market and trader state slot writes that actually changed a slot's value",
		},
		[]string{"market"},
	)
	c.SlotsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clob",
			Subsystem: "slotstore",
			Name:      "slots_skipped_total",
			Help:      "Number of market and trader state commits that skipped the write because the value was unchanged",
		},
		[]string{"market"},
	)

	c.CommitLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clob",
			Subsystem: "engine",
			Name:      "commit_latency_seconds",
			Help:      "Wall time spent committing one dispatch call's state changes",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"market", "selector"},
	)

	c.BookDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clob",
			Subsystem: "book",
			Name:      "outer_index_count",
			Help:      "Number of active outer bitmap groups on a side",
		},
		[]string{"market", "side"},
	)
	c.BestTick = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clob",
			Subsystem: "book",
			Name:      "best_tick",
			Help:      "Current best tick on a side, or -1 if the side is empty",
		},
		[]string{"market", "side"},
	)

	c.BatchCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clob",
			Subsystem: "dispatch",
			Name:      "batch_calls_total",
			Help:      "Number of individual calls executed across all batches, by selector",
		},
		[]string{"selector"},
	)
	c.BatchExitCode = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clob",
			Subsystem: "dispatch",
			Name:      "batch_exit_code_total",
			Help:      "Exit codes returned per call",
		},
		[]string{"selector", "exit_code"},
	)
	c.InvariantFaults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clob",
			Subsystem: "dispatch",
			Name:      "invariant_faults_total",
			Help:      "Number of batches aborted by an invariant fault",
		},
	)

	prometheus.MustRegister(c.SlotsLoaded)
	prometheus.MustRegister(c.SlotsWritten)
	prometheus.MustRegister(c.SlotsSkipped)
	prometheus.MustRegister(c.CommitLatency)
	prometheus.MustRegister(c.BookDepth)
	prometheus.MustRegister(c.BestTick)
	prometheus.MustRegister(c.BatchCallsTotal)
	prometheus.MustRegister(c.BatchExitCode)
	prometheus.MustRegister(c.InvariantFaults)

	return c
}

// RecordSlotTraffic adds the loads/writes/skips a slotstore.Tracking
// backend accumulated since its last Reset — the engine flushes its
// tracking counters this way once per top-level operation rather than
// emitting one Prometheus call per Sload/Sstore.
func (c *Collector) RecordSlotTraffic(market string, loads, writes, skips uint64) {
	if loads > 0 {
		c.SlotsLoaded.WithLabelValues(market).Add(float64(loads))
	}
	if writes > 0 {
		c.SlotsWritten.WithLabelValues(market).Add(float64(writes))
	}
	if skips > 0 {
		c.SlotsSkipped.WithLabelValues(market).Add(float64(skips))
	}
}

// RecordCommitLatency observes how long one dispatch call's commit took.
func (c *Collector) RecordCommitLatency(market, selector string, seconds float64) {
	c.CommitLatency.WithLabelValues(market, selector).Observe(seconds)
}

// UpdateBookShape sets the depth and best-tick gauges for a side.
func (c *Collector) UpdateBookShape(market, side string, outerCount uint32, bestTick int64) {
	c.BookDepth.WithLabelValues(market, side).Set(float64(outerCount))
	c.BestTick.WithLabelValues(market, side).Set(float64(bestTick))
}

// RecordCall increments the per-selector call counter and the
// selector/exit-code pair.
func (c *Collector) RecordCall(selector string, exitCode uint8) {
	c.BatchCallsTotal.WithLabelValues(selector).Inc()
	c.BatchExitCode.WithLabelValues(selector, strconv.Itoa(int(exitCode))).Inc()
}

// RecordInvariantFault increments the whole-batch-abort counter.
func (c *Collector) RecordInvariantFault() {
	c.InvariantFaults.Inc()
}

// Handler exposes the registered collectors over HTTP for a Prometheus
// scrape target.
func Handler() http.Handler {
	return promhttp.Handler()
}
