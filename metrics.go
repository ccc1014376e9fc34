package vstr

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSet is called after each element store.
	// size is the text length in bytes (0 for nulls), err is nil if successful.
	RecordSet(size int, duration time.Duration, err error)

	// RecordGet is called after each element load.
	RecordGet(duration time.Duration, err error)

	// RecordCompare is called after each pairwise comparison.
	RecordCompare(err error)

	// RecordFinalize is called after a finalize. cloned is true when a view
	// was detached onto a fresh arena.
	RecordFinalize(cloned bool)

	// RecordClear is called after a bulk clear of n records.
	RecordClear(n int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSet(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordGet(time.Duration, error)      {}
func (NoopMetricsCollector) RecordCompare(error)                 {}
func (NoopMetricsCollector) RecordFinalize(bool)                 {}
func (NoopMetricsCollector) RecordClear(int)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SetCount       atomic.Int64
	SetErrors      atomic.Int64
	SetBytes       atomic.Int64
	SetTotalNanos  atomic.Int64
	GetCount       atomic.Int64
	GetErrors      atomic.Int64
	GetTotalNanos  atomic.Int64
	CompareCount   atomic.Int64
	CompareErrors  atomic.Int64
	FinalizeCount  atomic.Int64
	FinalizeClones atomic.Int64
	ClearedRecords atomic.Int64
}

// RecordSet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSet(size int, duration time.Duration, err error) {
	b.SetCount.Add(1)
	b.SetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SetErrors.Add(1)
		return
	}
	b.SetBytes.Add(int64(size))
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GetErrors.Add(1)
	}
}

// RecordCompare implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompare(err error) {
	b.CompareCount.Add(1)
	if err != nil {
		b.CompareErrors.Add(1)
	}
}

// RecordFinalize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFinalize(cloned bool) {
	b.FinalizeCount.Add(1)
	if cloned {
		b.FinalizeClones.Add(1)
	}
}

// RecordClear implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClear(n int) {
	b.ClearedRecords.Add(int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SetCount:       b.SetCount.Load(),
		SetErrors:      b.SetErrors.Load(),
		SetBytes:       b.SetBytes.Load(),
		SetAvgNanos:    avg(b.SetTotalNanos.Load(), b.SetCount.Load()),
		GetCount:       b.GetCount.Load(),
		GetErrors:      b.GetErrors.Load(),
		GetAvgNanos:    avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		CompareCount:   b.CompareCount.Load(),
		CompareErrors:  b.CompareErrors.Load(),
		FinalizeCount:  b.FinalizeCount.Load(),
		FinalizeClones: b.FinalizeClones.Load(),
		ClearedRecords: b.ClearedRecords.Load(),
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
	SetCount       int64
	SetErrors      int64
	SetBytes       int64
	SetAvgNanos    int64
	GetCount       int64
	GetErrors      int64
	GetAvgNanos    int64
	CompareCount   int64
	CompareErrors  int64
	FinalizeCount  int64
	FinalizeClones int64
	ClearedRecords int64
}
