package kmviz

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRun is called after each run. steps is the number of recorded
	// Steps, err is nil if successful.
	RecordRun(k, steps int, converged bool, duration time.Duration, err error)

	// RecordBatch is called after each batch. count is the number of
	// requests, failed the number that returned an error.
	RecordBatch(count, failed int, duration time.Duration)

	// RecordCache is called after each run cache lookup.
	RecordCache(hit bool)

	// RecordGenerate is called after each dataset generation.
	RecordGenerate(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(int, int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)            {}
func (NoopMetricsCollector) RecordCache(bool)                               {}
func (NoopMetricsCollector) RecordGenerate(int, time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount           atomic.Int64
	RunErrors          atomic.Int64
	RunNonConverged    atomic.Int64
	RunSteps           atomic.Int64
	RunTotalNanos      atomic.Int64
	BatchCount         atomic.Int64
	BatchItems         atomic.Int64
	BatchFailed        atomic.Int64
	CacheHits          atomic.Int64
	CacheMisses        atomic.Int64
	GenerateCount      atomic.Int64
	GeneratePoints     atomic.Int64
	GenerateErrors     atomic.Int64
	GenerateTotalNanos atomic.Int64
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(k, steps int, converged bool, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	b.RunSteps.Add(int64(steps))
	if !converged {
		b.RunNonConverged.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// RecordCache implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCache(hit bool) {
	if hit {
		b.CacheHits.Add(1)
	} else {
		b.CacheMisses.Add(1)
	}
}

// RecordGenerate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGenerate(count int, duration time.Duration, err error) {
	b.GenerateCount.Add(1)
	b.GenerateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GenerateErrors.Add(1)
		return
	}
	b.GeneratePoints.Add(int64(count))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:        b.RunCount.Load(),
		RunErrors:       b.RunErrors.Load(),
		RunNonConverged: b.RunNonConverged.Load(),
		RunSteps:        b.RunSteps.Load(),
		RunAvgNanos:     avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		BatchCount:      b.BatchCount.Load(),
		BatchItems:      b.BatchItems.Load(),
		BatchFailed:     b.BatchFailed.Load(),
		CacheHits:       b.CacheHits.Load(),
		CacheMisses:     b.CacheMisses.Load(),
		GenerateCount:   b.GenerateCount.Load(),
		GeneratePoints:  b.GeneratePoints.Load(),
		GenerateErrors:  b.GenerateErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount        int64
	RunErrors       int64
	RunNonConverged int64
	RunSteps        int64
	RunAvgNanos     int64
	BatchCount      int64
	BatchItems      int64
	BatchFailed     int64
	CacheHits       int64
	CacheMisses     int64
	GenerateCount   int64
	GeneratePoints  int64
	GenerateErrors  int64
}
