// Package threadpool provides a fixed-size worker pool that executes
// tasks concurrently in priority order.
//
// Architecture overview
//
// The pool is composed of three layers:
//
//   1. Tasks
//      A Task carries its work function, an Argument (payload, ownership
//      tag and result slot), a Priority and an execution Status.
//      Exec runs the work at most once.
//
//   2. Task lists
//      Two lists, pending and executing, order tasks by priority and
//      break ties by submission order. A task lives in at most one list
//      at a time.
//
//   3. Workers
//      A fixed set of goroutines created with the pool. Each worker
//      takes the highest-priority pending task, moves it to executing,
//      runs it without holding the pool lock and then drops it.
//
// Synchronization
//
// A single mutex guards both lists, the id counter and the stop flag.
// Two condition variables share that mutex:
//
//   - new work or stop: workers sleep here while the pending list is empty
//   - task finished: Wait and WaitTask sleep here
//
// Submit never blocks on running work.
//
// Ordering
//
// Among pending tasks of equal priority, dispatch order equals submission
// order. A higher-priority task is always dispatched before any
// lower-priority task pending at the same time. Running tasks are never
// preempted, and completion order between concurrent tasks is unspecified.
//
// Ownership
//
// An Argument is either CallerOwned or PoolOwned. The pool releases a
// PoolOwned payload exactly once, right after the work has run. Results
// are written through Argument.Result, whose lifetime is the caller's.
//
// Shutdown
//
// Shutdown drains every submitted task before stopping the workers.
// ShutdownAsync does the same in a detached goroutine. ShutdownNow
// abandons the tasks that have not started yet and only waits for those
// already running.
//
// Error handling
//
// Errors returned by tasks, and panics recovered from them, are logged
// and passed to Options.OnTaskError. They never stop a worker and are
// never retried.
package threadpool
