package threadpool

import (
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the pool to report task activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {
	// IncSubmitted increments the accepted submissions counter.
	IncSubmitted()

	// IncExecuted increments the executed tasks counter.
	IncExecuted()

	// AddAbandoned adds n pending tasks dropped by an early teardown.
	AddAbandoned(n int64)
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	submitted atomic.Uint64

	_ [56]byte // padding to avoid false sharing

	executed atomic.Uint64

	_ [56]byte

	abandoned atomic.Int64
}

// Submitted returns the total number of accepted tasks.
func (m *AtomicMetrics) Submitted() uint64 { return m.submitted.Load() }

// Executed returns the total number of executed tasks.
func (m *AtomicMetrics) Executed() uint64 { return m.executed.Load() }

// Abandoned returns the total number of tasks that never ran.
func (m *AtomicMetrics) Abandoned() int64 { return m.abandoned.Load() }

func (m *AtomicMetrics) IncSubmitted()        { m.submitted.Add(1) }
func (m *AtomicMetrics) IncExecuted()         { m.executed.Add(1) }
func (m *AtomicMetrics) AddAbandoned(n int64) { m.abandoned.Add(n) }

//------------- NoopMetrics ----------------------------------

// NoopMetrics discards all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted()        {}
func (m *NoopMetrics) IncExecuted()         {}
func (m *NoopMetrics) AddAbandoned(n int64) {}
