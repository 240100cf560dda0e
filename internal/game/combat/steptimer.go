package combat

import (
	"sync"
	"time"
)

// StepTimer fires an encounter step after a delay unless stopped. The
// presentation layer uses it to run the enemy phase once its own attack
// animation has finished. It is safe for concurrent use.
type StepTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewStepTimer starts a timer that calls step after delay in its own goroutine.
//
// Precondition: delay >= 0; step must not be nil.
// Postcondition: step will be called unless Stop is called first.
func NewStepTimer(delay time.Duration, step func()) *StepTimer {
	st := &StepTimer{}
	st.timer = time.AfterFunc(delay, st.guard(step))
	return st
}

func (st *StepTimer) guard(step func()) func() {
	return func() {
		st.mu.Lock()
		stopped := st.stopped
		st.mu.Unlock()
		if !stopped {
			step()
		}
	}
}

// Reset cancels the pending step and schedules step after delay.
func (st *StepTimer) Reset(delay time.Duration, step func()) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.timer.Stop()
	st.stopped = false
	st.timer = time.AfterFunc(delay, st.guard(step))
}

// Stop prevents the pending step from firing. Safe to call multiple times.
func (st *StepTimer) Stop() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.stopped = true
	st.timer.Stop()
}

// After schedules fn(enc) after delay and returns a channel closed once it ran.
func After(delay time.Duration, enc *Encounter, fn func(*Encounter)) (*StepTimer, <-chan struct{}) {
	done := make(chan struct{})
	st := NewStepTimer(delay, func() {
		defer close(done)
		fn(enc)
	})
	return st, done
}
