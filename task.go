package threadpool

import (
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/multierr"
)

// TaskID identifies a task within one pool. Zero means "not submitted".
type TaskID uint64

// Ownership tells the pool whether it is responsible for releasing
// a task's payload.
type Ownership uint8

const (
	// CallerOwned payloads are never touched by the pool after execution.
	CallerOwned Ownership = iota

	// PoolOwned payloads are released exactly once, right after the work
	// has run.
	PoolOwned
)

// Status is the execution state of a task.
type Status uint32

const (
	NotExecuted Status = iota
	Executed
	// Abandoned tasks were dropped from the pending list by an early
	// teardown and never ran.
	Abandoned
)

func (s Status) String() string {
	switch s {
	case NotExecuted:
		return "NotExecuted"
	case Executed:
		return "Executed"
	case Abandoned:
		return "Abandoned"
	default:
		return "Unknown"
	}
}

// WorkFunc is the function executed by a worker for a given argument.
// Output is written through arg.Result.
type WorkFunc[T any] func(arg *Argument[T]) error

// Argument is the input handed to a WorkFunc.
//
// Result is an address the work writes into; its lifetime belongs to the
// caller. Release, if set, is used to free a PoolOwned payload. Without it
// the pool closes payloads that implement io.Closer.
type Argument[T any] struct {
	Payload   T
	Ownership Ownership
	Result    any
	Release   func(T)
}

// NewArgument builds an Argument from its parts.
func NewArgument[T any](payload T, own Ownership, result any) Argument[T] {
	return Argument[T]{Payload: payload, Ownership: own, Result: result}
}

// NoArgument returns an empty caller-owned argument with no result slot.
func NoArgument[T any]() Argument[T] {
	return Argument[T]{}
}

func (a *Argument[T]) release() error {
	if a.Ownership != PoolOwned {
		return nil
	}
	if a.Release != nil {
		a.Release(a.Payload)
		return nil
	}
	if c, ok := any(a.Payload).(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Task is a single unit of work submitted to the pool.
type Task[T any] struct {
	id       TaskID
	fn       WorkFunc[T]
	arg      Argument[T]
	priority Priority

	status  atomic.Uint32
	claimed atomic.Bool

	// seq and index belong to the list currently holding the task and are
	// only touched under the pool lock.
	seq   uint64
	index int
}

// NewTask creates a task that is not yet linked into any pool.
// Its id stays zero until the task is submitted.
func NewTask[T any](fn WorkFunc[T], arg Argument[T], prio Priority) *Task[T] {
	return &Task[T]{
		fn:       fn,
		arg:      arg,
		priority: prio,
		index:    -1,
	}
}

func (t *Task[T]) ID() TaskID         { return t.id }
func (t *Task[T]) Priority() Priority { return t.priority }
func (t *Task[T]) Status() Status     { return Status(t.status.Load()) }

// Exec runs the task's work exactly once.
//
// The first call runs the work, marks the task Executed and then releases a
// PoolOwned payload. A panic in the work or in the release is recovered and
// returned as an error. Every later call is a no-op returning
// ErrAlreadyExecuted, or ErrTaskAbandoned if the task was dropped before it
// could run.
func (t *Task[T]) Exec() (err error) {
	if !t.claimed.CompareAndSwap(false, true) {
		if t.Status() == Abandoned {
			return ErrTaskAbandoned
		}
		return ErrAlreadyExecuted
	}
	if t.fn == nil {
		t.claimed.Store(false)
		return ErrNilFunc
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("threadpool: task %d panicked: %v", t.id, r)
		}
		t.status.Store(uint32(Executed))
		err = multierr.Append(err, t.releasePayload())
	}()

	return t.fn(&t.arg)
}

// releasePayload frees a PoolOwned payload, turning a panic in Release or
// Close into an error.
func (t *Task[T]) releasePayload() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("threadpool: task %d release panicked: %v", t.id, r)
		}
	}()
	return t.arg.release()
}

// abandon marks a task that never ran. It reports false if the task was
// already claimed for execution.
func (t *Task[T]) abandon() bool {
	if !t.claimed.CompareAndSwap(false, true) {
		return false
	}
	t.status.Store(uint32(Abandoned))
	return true
}

// destroy drops the references held by a task that left every list.
func (t *Task[T]) destroy() {
	t.fn = nil
	t.arg = Argument[T]{}
	t.index = -1
}
