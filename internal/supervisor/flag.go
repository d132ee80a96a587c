package supervisor

import "sync"

// ShutdownFlag is the minimum shared mutable state between the signal
// handler and the reaper: a mutex-guarded bool rather than an atomic, per
// the design note that a single lock keeps the cross-goroutine ordering
// honest and avoids a missed-wakeup where the reaper sleeps past an
// update.
type ShutdownFlag struct {
	mu sync.Mutex
	v  bool
}

// Set marks the flag true. Idempotent: repeated calls have no additional
// effect.
func (f *ShutdownFlag) Set() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = true
}

// Get reports the current value.
func (f *ShutdownFlag) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}
