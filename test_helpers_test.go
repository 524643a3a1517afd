package threadpool_test

import (
	"runtime"
	"testing"
	"time"

	tp "github.com/Andrej220/go-utils/threadpool"
)

func newTestPool[T any](t *testing.T, workers int) (*tp.Pool[T, *tp.AtomicMetrics], *tp.AtomicMetrics) {
	t.Helper()

	m := &tp.AtomicMetrics{}
	p := tp.NewPool[T](tp.Options{Workers: workers}, m)
	t.Cleanup(p.Stop)
	return p, m
}

// gate returns a work func that blocks until release is called, and a
// channel closed once the work has started.
func gate[T any]() (fn tp.WorkFunc[T], started <-chan struct{}, release func()) {
	s := make(chan struct{})
	r := make(chan struct{})
	fn = func(*tp.Argument[T]) error {
		close(s)
		<-r
		return nil
	}
	return fn, s, func() { close(r) }
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}

func waitClosed(t *testing.T, ch <-chan struct{}, timeout time.Duration, what string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("%s did not happen within %v", what, timeout)
	}
}
