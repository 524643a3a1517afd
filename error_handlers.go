package threadpool

import (
	lg "github.com/Andrej220/go-utils/zlog"
)

// reportInternalError logs an internal pool error and hands it to
// OnInternalError, if set.
//
// Internal errors are non-task failures such as a worker that
// could not be pinned to its CPU.
func (p *Pool[T, M]) reportInternalError(e error) {
	lg.FromContext(p.opts.Ctx).Warn("Internal pool error", lg.Any("error", e))
	if p.opts.OnInternalError != nil {
		p.opts.OnInternalError(e)
	}
}

// reportTaskError logs an error returned by a task or
// produced by panic recovery, then hands it to OnTaskError, if set.
//
// Task errors never stop a worker.
func (p *Pool[T, M]) reportTaskError(worker int, id TaskID, err error) {
	lg.FromContext(p.opts.Ctx).Error("Task failed",
		lg.Any("task", id),
		lg.Int("worker", worker),
		lg.Any("error", err),
	)
	if p.opts.OnTaskError != nil {
		p.opts.OnTaskError(id, err)
	}
}
