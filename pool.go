package threadpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Pool runs tasks on a fixed set of workers, highest priority first.
//
// All shared state (both task lists, the id counter and the stop/closed
// flags) is guarded by mu. Workers wait on newWork; callers of Wait and
// WaitTask wait on taskDone.
type Pool[T any, M MetricsPolicy] struct {
	opts    Options
	metrics M

	mu        sync.Mutex
	newWork   *sync.Cond
	taskDone  *sync.Cond
	pending   *taskList[T]
	executing *taskList[T]
	nextID    TaskID
	stop      bool // workers exit
	closed    bool // submissions rejected

	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a pool with n workers and no metrics collection.
func New[T any](n int) *Pool[T, *NoopMetrics] {
	return NewPool[T](Options{Workers: n}, &NoopMetrics{})
}

// NewPool creates a pool from opts and starts its workers. The workers
// block until the first task is submitted.
func NewPool[T any, M MetricsPolicy](opts Options, metrics M) *Pool[T, M] {
	opts.FillDefaults()

	p := &Pool[T, M]{
		opts:      opts,
		metrics:   metrics,
		pending:   newTaskList[T](),
		executing: newTaskList[T](),
		done:      make(chan struct{}),
	}
	p.newWork = sync.NewCond(&p.mu)
	p.taskDone = sync.NewCond(&p.mu)

	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// Submit wraps fn and arg into a task and queues it.
func (p *Pool[T, M]) Submit(fn WorkFunc[T], arg Argument[T], prio Priority) (TaskID, error) {
	return p.SubmitTask(NewTask(fn, arg, prio))
}

// SubmitTask queues t and returns its newly assigned id. It never blocks
// on running work. A rejected task gets id 0 and an error.
func (p *Pool[T, M]) SubmitTask(t *Task[T]) (TaskID, error) {
	if t == nil {
		return 0, ErrNilTask
	}

	p.mu.Lock()
	if err := p.admit(t); err != nil {
		p.mu.Unlock()
		return 0, err
	}
	p.nextID++
	t.id = p.nextID
	id := t.id
	p.pending.Insert(t)
	p.newWork.Signal()
	p.mu.Unlock()

	p.metrics.IncSubmitted()
	return id, nil
}

func (p *Pool[T, M]) admit(t *Task[T]) error {
	switch {
	case p.closed:
		return ErrPoolClosed
	case t.id != 0:
		return ErrTaskSubmitted
	case t.claimed.Load():
		return ErrAlreadyExecuted
	case t.fn == nil:
		return ErrNilFunc
	}
	return nil
}

// Wait blocks until no task is pending or executing.
func (p *Pool[T, M]) Wait() {
	p.mu.Lock()
	for p.pending.Len() > 0 || p.executing.Len() > 0 {
		p.taskDone.Wait()
	}
	p.mu.Unlock()
}

// WaitTask blocks until the task with the given id is neither pending nor
// executing. Unknown ids return immediately.
func (p *Pool[T, M]) WaitTask(id TaskID) {
	p.mu.Lock()
	for p.has(id) {
		p.taskDone.Wait()
	}
	p.mu.Unlock()
}

// IsDone reports whether the task with the given id has left the pool.
// It does not distinguish finished tasks from ids that were never issued.
func (p *Pool[T, M]) IsDone(id TaskID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.has(id)
}

func (p *Pool[T, M]) has(id TaskID) bool {
	return p.pending.Get(id) != nil || p.executing.Get(id) != nil
}

// Shutdown stops accepting tasks, waits for everything already submitted to
// finish and then stops the workers.
//
// ctx only bounds how long the caller waits: if it expires, Shutdown returns
// ctx.Err() and the teardown carries on in the background. Calling Shutdown
// again waits for the same teardown. It must not be called from inside a
// task, which would wait on itself.
func (p *Pool[T, M]) Shutdown(ctx context.Context) error {
	p.beginShutdown()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop is a blocking Shutdown without a deadline.
func (p *Pool[T, M]) Stop() { _ = p.Shutdown(context.Background()) }

// ShutdownAsync starts the shutdown in a detached goroutine and returns at
// once. The returned channel is closed when the last worker has exited.
// The pool must not be used for new work afterwards.
func (p *Pool[T, M]) ShutdownAsync() <-chan struct{} {
	p.beginShutdown()
	return p.done
}

// ShutdownNow drops every pending task, marking it Abandoned, and then shuts
// the pool down. Tasks already executing run to completion. The payloads of
// abandoned tasks are not released. It returns the abandoned ids in the
// order they would have been dispatched.
func (p *Pool[T, M]) ShutdownNow(ctx context.Context) ([]TaskID, error) {
	p.mu.Lock()
	p.closed = true
	abandoned := p.pending.Clear()
	p.taskDone.Broadcast()
	p.mu.Unlock()

	if n := len(abandoned); n > 0 {
		p.metrics.AddAbandoned(int64(n))
		lg.FromContext(p.opts.Ctx).Warn("Pending tasks abandoned", lg.Int("count", n))
	}
	return abandoned, p.Shutdown(ctx)
}

// Done is closed once the pool has fully stopped.
func (p *Pool[T, M]) Done() <-chan struct{} { return p.done }

func (p *Pool[T, M]) beginShutdown() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		go p.teardown()
	})
}

func (p *Pool[T, M]) teardown() {
	defer close(p.done)

	logger := lg.FromContext(p.opts.Ctx)
	logger.Info("Pool shutting down", lg.Int("workers", p.opts.Workers))

	p.Wait()

	p.mu.Lock()
	p.stop = true
	p.newWork.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	logger.Info("Pool stopped")
}

// worker runs tasks until the pool stops. If a task ends the goroutine with
// runtime.Goexit, a replacement worker takes over the same slot.
func (p *Pool[T, M]) worker(idx int) {
	stopped := false
	defer func() {
		if !stopped {
			// Add before Done so teardown never sees the count hit zero.
			p.wg.Add(1)
			go p.worker(idx)
		}
		p.wg.Done()
	}()

	if p.opts.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		p.pin(idx)
	}

	for {
		p.mu.Lock()
		for !p.stop && p.pending.Len() == 0 {
			p.newWork.Wait()
		}
		if p.stop {
			p.mu.Unlock()
			stopped = true
			return
		}
		t := p.pending.Pop()
		p.executing.Insert(t)
		p.mu.Unlock()

		p.execute(idx, t)
	}
}

// execute runs t and always unlinks it from the executing list afterwards,
// even when the work never returns to the worker.
func (p *Pool[T, M]) execute(idx int, t *Task[T]) {
	returned := false
	defer func() {
		if !returned {
			p.metrics.IncExecuted()
			p.reportTaskError(idx, t.id, ErrTaskExited)
		}

		p.mu.Lock()
		p.executing.Remove(t.id)
		t.destroy()
		p.taskDone.Broadcast()
		p.mu.Unlock()
	}()

	p.run(idx, t)
	returned = true
}

func (p *Pool[T, M]) run(worker int, t *Task[T]) {
	err := t.Exec()
	p.metrics.IncExecuted()
	if err != nil {
		p.reportTaskError(worker, t.id, err)
	}
}

func (p *Pool[T, M]) pin(idx int) {
	cpu := idx % runtime.NumCPU()
	if err := PinToCPU(cpu); err != nil {
		p.reportInternalError(fmt.Errorf("threadpool: pin worker %d to cpu %d: %w", idx, cpu, err))
	}
}

func (p *Pool[T, M]) Workers() int { return p.opts.Workers }

// PendingCount returns the number of tasks waiting for a worker.
func (p *Pool[T, M]) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.Len()
}

// ExecutingCount returns the number of tasks currently running.
func (p *Pool[T, M]) ExecutingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.executing.Len()
}
