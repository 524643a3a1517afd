package threadpool

import (
	"errors"
)

var (
	// ErrPoolClosed is returned by Submit once shutdown has begun.
	ErrPoolClosed = errors.New("threadpool: pool closed")

	// ErrNilTask is returned when SubmitTask receives a nil task.
	ErrNilTask = errors.New("threadpool: task is nil")

	// ErrNilFunc is returned when a submitted task has a nil work func.
	ErrNilFunc = errors.New("threadpool: task func is nil")

	// ErrTaskSubmitted is returned when a task that already carries an id
	// is submitted again.
	ErrTaskSubmitted = errors.New("threadpool: task already submitted")

	// ErrAlreadyExecuted is returned by Exec when the work has already run.
	ErrAlreadyExecuted = errors.New("threadpool: task already executed")

	// ErrTaskExited is reported for a task whose work ended its goroutine
	// with runtime.Goexit instead of returning.
	ErrTaskExited = errors.New("threadpool: task exited its goroutine")

	// ErrTaskAbandoned is returned by Exec for a task dropped from the
	// pending list before a worker picked it up.
	ErrTaskAbandoned = errors.New("threadpool: task abandoned")
)
