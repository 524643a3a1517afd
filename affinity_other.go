//go:build !linux

package threadpool

// PinToCPU is a no-op outside Linux; the worker still gets a dedicated
// OS thread.
func PinToCPU(int) error { return nil }
