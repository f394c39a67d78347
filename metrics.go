package diapasom

import (
	"sync/atomic"
	"time"
)

// MetricsCollector collects operational metrics about a training run.
// Implement this to integrate with a monitoring system.
type MetricsCollector interface {
	// RecordEpoch is called after initialization (epoch 0) and after each
	// completed epoch except the one that converges, with the diff it
	// produced and the time since the previous call.
	RecordEpoch(epoch int, diff float64, duration time.Duration)

	// RecordBatch is called after each batch is committed.
	RecordBatch(duration time.Duration)

	// RecordRun is called once when a run finishes, err is nil on success.
	RecordRun(summary Summary, err error)
}

// NoopMetricsCollector discards every recorded metric.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEpoch(int, float64, time.Duration) {}
func (NoopMetricsCollector) RecordBatch(time.Duration)               {}
func (NoopMetricsCollector) RecordRun(Summary, error)                {}

// BasicMetricsCollector is a simple in-memory MetricsCollector, useful
// for debugging and basic monitoring without an external dependency.
type BasicMetricsCollector struct {
	EpochCount     atomic.Int64
	BatchCount     atomic.Int64
	BatchTotalNanos atomic.Int64
	RunCount       atomic.Int64
	RunErrors      atomic.Int64
	LastDiff       atomic.Value // float64
}

func (b *BasicMetricsCollector) RecordEpoch(epoch int, diff float64, duration time.Duration) {
	b.EpochCount.Add(1)
	b.LastDiff.Store(diff)
}

func (b *BasicMetricsCollector) RecordBatch(duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchTotalNanos.Add(duration.Nanoseconds())
}

func (b *BasicMetricsCollector) RecordRun(summary Summary, err error) {
	b.RunCount.Add(1)
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	diff, _ := b.LastDiff.Load().(float64)
	return BasicMetricsStats{
		EpochCount:    b.EpochCount.Load(),
		BatchCount:    b.BatchCount.Load(),
		BatchAvgNanos: b.getAvgBatchNanos(),
		RunCount:      b.RunCount.Load(),
		RunErrors:     b.RunErrors.Load(),
		LastDiff:      diff,
	}
}

func (b *BasicMetricsCollector) getAvgBatchNanos() int64 {
	count := b.BatchCount.Load()
	if count == 0 {
		return 0
	}
	return b.BatchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EpochCount    int64
	BatchCount    int64
	BatchAvgNanos int64
	RunCount      int64
	RunErrors     int64
	LastDiff      float64
}
