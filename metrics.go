package meshkit

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    ops *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordOperation(op string, d time.Duration, err error) {
//	    p.ops.WithLabelValues(op, strconv.FormatBool(err == nil)).Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordOperation is called after each kernel operation.
	// duration is the total time taken, err is nil if successful.
	RecordOperation(op string, duration time.Duration, err error)

	// RecordRejections is called when an operation reports diagnostics
	// (ambiguous clusters, rejected merges, field conflicts).
	RecordRejections(op string, count int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOperation(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordRejections(string, int)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ops sync.Map // op name -> *opCounters
}

type opCounters struct {
	count      atomic.Int64
	errors     atomic.Int64
	totalNanos atomic.Int64
	rejections atomic.Int64
}

func (b *BasicMetricsCollector) counters(op string) *opCounters {
	if c, ok := b.ops.Load(op); ok {
		return c.(*opCounters)
	}

	c, _ := b.ops.LoadOrStore(op, &opCounters{})

	return c.(*opCounters)
}

// RecordOperation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOperation(op string, duration time.Duration, err error) {
	c := b.counters(op)
	c.count.Add(1)
	c.totalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.errors.Add(1)
	}
}

// RecordRejections implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRejections(op string, count int) {
	b.counters(op).rejections.Add(int64(count))
}

// GetStats returns a snapshot of current metrics keyed by operation.
func (b *BasicMetricsCollector) GetStats() map[string]OperationStats {
	out := make(map[string]OperationStats)

	b.ops.Range(func(k, v any) bool {
		c := v.(*opCounters)
		s := OperationStats{
			Count:      c.count.Load(),
			Errors:     c.errors.Load(),
			Rejections: c.rejections.Load(),
		}

		if s.Count > 0 {
			s.AvgNanos = c.totalNanos.Load() / s.Count
		}

		out[k.(string)] = s

		return true
	})

	return out
}

// OperationStats is a snapshot of the counters of one operation.
type OperationStats struct {
	Count      int64
	Errors     int64
	AvgNanos   int64
	Rejections int64
}
