package mocks

import (
	"time"

	"github.com/wordrace/server/internal/dependencies/scheduler"
)

// ManualTimer is a scheduled callback owned by a ManualScheduler
type ManualTimer struct {
	Duration time.Duration
	fn       func()
	stopped  bool
	fired    bool
}

// Stop cancels the timer if it has not fired yet
func (t *ManualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// ManualScheduler is a Scheduler whose timers only fire when the test
// says so. Timers fire in arming order; callbacks may arm new timers,
// which queue behind existing ones.
type ManualScheduler struct {
	timers []*ManualTimer
}

// Ensure ManualScheduler implements Scheduler
var _ scheduler.Scheduler = (*ManualScheduler)(nil)

// NewManualScheduler creates a new ManualScheduler
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc records the callback without running it
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) scheduler.Timer {
	t := &ManualTimer{Duration: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns the number of armed, unfired, unstopped timers
func (s *ManualScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// FireNext runs the oldest pending timer's callback. It reports whether
// a timer fired.
func (s *ManualScheduler) FireNext() bool {
	for _, t := range s.timers {
		if t.fired || t.stopped {
			continue
		}
		t.fired = true
		t.fn()
		return true
	}
	return false
}

// FireAll fires every timer pending at the time of the call, in order.
// Timers armed by the fired callbacks are left pending.
func (s *ManualScheduler) FireAll() int {
	snapshot := make([]*ManualTimer, len(s.timers))
	copy(snapshot, s.timers)
	fired := 0
	for _, t := range snapshot {
		if t.fired || t.stopped {
			continue
		}
		t.fired = true
		t.fn()
		fired++
	}
	return fired
}
