package threadpool

import (
	"context"
	"runtime"
)

// Options configure a Pool.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Workers is the fixed number of worker goroutines.
	Workers int

	// PinWorkers locks every worker to its own OS thread and, on Linux,
	// restricts that thread to a single CPU.
	PinWorkers bool

	// Ctx is the base context the pool takes its logger from.
	Ctx context.Context

	// OnTaskError receives errors returned by tasks, including recovered
	// panics and payload release failures.
	OnTaskError func(id TaskID, err error)

	// OnInternalError receives failures inside the pool itself.
	OnInternalError func(err error)
}

func (o *Options) FillDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
}
