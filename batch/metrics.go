package batch

import (
	"sync/atomic"
	"time"
)

// Metrics holds the monotonic counters and timing for a single Job run.
// All counters are updated with atomic release-store and read with
// atomic acquire-load so the Monitor can read them from another
// goroutine without ever observing a regression (spec.md §5).
type Metrics struct {
	readCount     atomic.Uint64
	writeCount    atomic.Uint64
	filteredCount atomic.Uint64
	errorCount    atomic.Uint64
	startTime     atomic.Int64
	endTime       atomic.Int64
}

// MetricsSnapshot is an immutable point-in-time copy of Metrics, safe to
// hand to a caller that must not observe further mutation.
type MetricsSnapshot struct {
	ReadCount     uint64
	WriteCount    uint64
	FilteredCount uint64
	ErrorCount    uint64
	StartTime     time.Time
	EndTime       time.Time
}

func (m *Metrics) incRead() uint64 {
	return m.readCount.Add(1)
}

func (m *Metrics) incFiltered() uint64 {
	return m.filteredCount.Add(1)
}

func (m *Metrics) addError(n uint64) uint64 {
	if n == 0 {
		return m.errorCount.Load()
	}
	return m.errorCount.Add(n)
}

func (m *Metrics) addWritten(n uint64) uint64 {
	if n == 0 {
		return m.writeCount.Load()
	}
	return m.writeCount.Add(n)
}

func (m *Metrics) markStart() {
	m.startTime.Store(time.Now().UnixNano())
}

func (m *Metrics) markEnd() {
	m.endTime.Store(time.Now().UnixNano())
}

// ReadCount returns the current read counter.
func (m *Metrics) ReadCount() uint64 { return m.readCount.Load() }

// WriteCount returns the current write counter.
func (m *Metrics) WriteCount() uint64 { return m.writeCount.Load() }

// FilteredCount returns the current filtered counter.
func (m *Metrics) FilteredCount() uint64 { return m.filteredCount.Load() }

// ErrorCount returns the current error counter.
func (m *Metrics) ErrorCount() uint64 { return m.errorCount.Load() }

// StartTime returns the run's start time, or the zero Time if not yet started.
func (m *Metrics) StartTime() time.Time {
	return nanoToTime(m.startTime.Load())
}

// EndTime returns the run's end time, or the zero Time if not yet finished.
func (m *Metrics) EndTime() time.Time {
	return nanoToTime(m.endTime.Load())
}

func nanoToTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Snapshot takes a consistent-enough read of every counter. Because each
// field is an independent atomic, a snapshot taken mid-run may interleave
// with a single in-flight increment, but it can never show a counter
// lower than a previously returned snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ReadCount:     m.ReadCount(),
		WriteCount:    m.WriteCount(),
		FilteredCount: m.FilteredCount(),
		ErrorCount:    m.ErrorCount(),
		StartTime:     m.StartTime(),
		EndTime:       m.EndTime(),
	}
}
