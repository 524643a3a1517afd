package threadpool

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type closerPayload struct {
	closed *atomic.Int32
	err    error
}

func (c closerPayload) Close() error {
	c.closed.Add(1)
	return c.err
}

func TestNewTask(t *testing.T) {
	fn := func(*Argument[int]) error { return nil }
	task := NewTask(fn, NoArgument[int](), High)

	require.Equal(t, TaskID(0), task.ID())
	require.Equal(t, High, task.Priority())
	require.Equal(t, NotExecuted, task.Status())
	require.Equal(t, -1, task.index)
}

func TestNewArgument(t *testing.T) {
	var result int
	arg := NewArgument(7, PoolOwned, &result)

	require.Equal(t, 7, arg.Payload)
	require.Equal(t, PoolOwned, arg.Ownership)
	require.Same(t, &result, arg.Result)
}

func TestTaskExecRunsOnce(t *testing.T) {
	var calls atomic.Int32
	var result int

	task := NewTask(func(arg *Argument[int]) error {
		*arg.Result.(*int) = arg.Payload * 2
		calls.Add(1)
		return nil
	}, NewArgument(21, CallerOwned, &result), Medium)

	require.NoError(t, task.Exec())
	require.Equal(t, Executed, task.Status())
	require.Equal(t, 42, result)

	require.ErrorIs(t, task.Exec(), ErrAlreadyExecuted)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, 42, result)
}

func TestTaskExecReleasesPoolOwnedPayload(t *testing.T) {
	var released []int
	arg := NewArgument(5, PoolOwned, nil)
	arg.Release = func(v int) { released = append(released, v) }

	task := NewTask(func(*Argument[int]) error { return nil }, arg, Low)
	require.NoError(t, task.Exec())
	_ = task.Exec()

	require.Equal(t, []int{5}, released)
}

func TestTaskExecKeepsCallerOwnedPayload(t *testing.T) {
	var closed atomic.Int32
	arg := NewArgument(closerPayload{closed: &closed}, CallerOwned, nil)

	task := NewTask(func(*Argument[closerPayload]) error { return nil }, arg, Low)
	require.NoError(t, task.Exec())
	require.Equal(t, int32(0), closed.Load())
}

func TestTaskExecClosesPoolOwnedCloser(t *testing.T) {
	var closed atomic.Int32
	closeErr := errors.New("close failed")
	workErr := errors.New("work failed")
	arg := NewArgument(closerPayload{closed: &closed, err: closeErr}, PoolOwned, nil)

	task := NewTask(func(*Argument[closerPayload]) error { return workErr }, arg, Low)
	err := task.Exec()

	require.ErrorIs(t, err, workErr)
	require.ErrorIs(t, err, closeErr)
	require.Equal(t, int32(1), closed.Load())
	require.Equal(t, Executed, task.Status())
}

func TestTaskExecRecoversPanic(t *testing.T) {
	var released atomic.Int32
	arg := NewArgument(1, PoolOwned, nil)
	arg.Release = func(int) { released.Add(1) }

	task := NewTask(func(*Argument[int]) error { panic("boom") }, arg, Medium)
	err := task.Exec()

	require.Error(t, err)
	require.Contains(t, err.Error(), "panicked: boom")
	require.Equal(t, Executed, task.Status())
	require.Equal(t, int32(1), released.Load())
}

func TestTaskExecRecoversReleasePanic(t *testing.T) {
	var runs atomic.Int32
	arg := NewArgument(1, PoolOwned, nil)
	arg.Release = func(int) { panic("release boom") }

	task := NewTask(func(*Argument[int]) error { runs.Add(1); return nil }, arg, Medium)
	err := task.Exec()

	require.Error(t, err)
	require.Contains(t, err.Error(), "release panicked: release boom")
	require.Equal(t, Executed, task.Status())
	require.Equal(t, int32(1), runs.Load())
	require.ErrorIs(t, task.Exec(), ErrAlreadyExecuted)
	require.Equal(t, int32(1), runs.Load())
}

func TestTaskExecNilFunc(t *testing.T) {
	task := NewTask[int](nil, NoArgument[int](), Medium)
	require.ErrorIs(t, task.Exec(), ErrNilFunc)
	require.Equal(t, NotExecuted, task.Status())
}

func TestAbandonedTaskNeverRuns(t *testing.T) {
	ran := false
	task := NewTask(func(*Argument[int]) error { ran = true; return nil }, NoArgument[int](), Medium)

	require.True(t, task.abandon())
	require.ErrorIs(t, task.Exec(), ErrTaskAbandoned)
	require.False(t, ran)
	require.Equal(t, Abandoned, task.Status())
	require.False(t, task.abandon())
}

func TestPriorityString(t *testing.T) {
	require.Equal(t, "LOW", Low.String())
	require.Equal(t, "MEDIUM", DefaultPriority.String())
	require.Equal(t, "HIGH", High.String())
	require.Equal(t, "Priority(25)", Priority(25).String())
	require.True(t, Low < Medium && Medium < High)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "NotExecuted", NotExecuted.String())
	require.Equal(t, "Executed", Executed.String())
	require.Equal(t, "Abandoned", Abandoned.String())
	require.Equal(t, "Unknown", Status(9).String())
}
