package scheduler

import "time"

// Timer is a handle to a scheduled single-shot callback
type Timer interface {
	// Stop cancels the timer. It reports whether the call actually
	// prevented the callback from firing.
	Stop() bool
}

// Scheduler arms single-shot callbacks. Real deployments use the runtime
// timer; tests use the manual scheduler so deadline expiry is driven
// explicitly.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler implements Scheduler using time.AfterFunc
type RealScheduler struct{}

// New creates a new RealScheduler
func New() *RealScheduler {
	return &RealScheduler{}
}

// AfterFunc schedules fn to run after d on its own goroutine
func (s *RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
