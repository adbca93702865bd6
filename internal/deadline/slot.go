// Package deadline provides the single-slot armed deadline used for
// phase advancement. A room owns at most one outstanding phase deadline
// at any time: arming a slot always cancels whatever was armed before.
package deadline

import (
	"sync"
	"time"

	"github.com/wordrace/server/internal/dependencies/scheduler"
)

// Slot is a fire-once, re-armable deadline. A stale callback (one whose
// timer was superseded or cancelled after the runtime already committed
// to firing it) is suppressed by the slot, but callers are still
// expected to re-validate state inside the callback: the callback runs
// on the scheduler's goroutine.
type Slot struct {
	sched scheduler.Scheduler

	mu    sync.Mutex
	timer scheduler.Timer
	gen   uint64
}

// NewSlot creates an unarmed slot backed by the given scheduler
func NewSlot(sched scheduler.Scheduler) *Slot {
	return &Slot{sched: sched}
}

// Arm schedules fn to run after d, cancelling any previously armed
// deadline on this slot.
func (s *Slot) Arm(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen

	s.timer = s.sched.AfterFunc(d, func() {
		if !s.claim(gen) {
			return
		}
		fn()
	})
}

// Cancel stops any armed deadline. Safe to call when nothing is armed.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// claim marks the slot as fired if gen is still current
func (s *Slot) claim(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.timer = nil
	s.gen++
	return true
}
