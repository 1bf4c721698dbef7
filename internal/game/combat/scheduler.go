package combat

import (
	"sync"
	"time"
)

// Scheduler runs deferred continuations for presentation pacing. Every task
// is keyed to the scheduler's epoch at schedule time; Teardown bumps the
// epoch, so a pending continuation can never fire against a torn-down
// encounter. Safe for concurrent use.
type Scheduler struct {
	mu    sync.Mutex
	epoch uint64
	timer *time.Timer
}

// NewScheduler creates a Scheduler at epoch zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule arranges for fn to run after delay unless the scheduler is torn
// down first. A zero delay runs fn immediately on the calling goroutine,
// which keeps synchronous tests deterministic.
//
// Precondition: fn must not be nil.
// Postcondition: fn runs at most once, and never after Teardown.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	if delay <= 0 {
		fn()
		return
	}

	s.mu.Lock()
	epoch := s.epoch
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		live := s.epoch == epoch
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	s.mu.Unlock()
}

// Teardown invalidates every pending continuation. Safe to call multiple
// times.
//
// Postcondition: No previously scheduled fn will fire after Teardown returns.
func (s *Scheduler) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Epoch returns the current epoch counter. Exposed for tests.
func (s *Scheduler) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}
