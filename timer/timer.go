// File: timer.go
// Brief: Timer to measure time spent in hot paths, and the monotonic/wall
// clock helpers used to stamp LockRecord.CreatedAt and HeldEntry.AcquiredAt.

package timer

import "time"

// Now returns the current wall-clock time, used for diagnostic timestamps
// (LockRecord.CreatedAt, HeldEntry.AcquiredAt). time.Time already carries a
// monotonic reading internally, so duration math derived from it (e.g. the
// age of a held lock) is immune to wall-clock adjustments.
func Now() time.Time {
	return time.Now()
}

// Timer is a start/stop timer that accumulates elapsed time across
// multiple Start/Stop cycles. Used to instrument the admission-check hot
// path without requiring every caller to compute durations by hand.
type Timer struct {
	startTime time.Time
	elapsed   time.Duration
	running   bool
}

// Start starts the timer. A no-op if already running.
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.startTime = time.Now()
	t.running = true
}

// Stop stops the timer. A no-op if not running.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.elapsed += time.Since(t.startTime)
	t.running = false
}

// GetTime returns the total elapsed time of the timer.
func (t *Timer) GetTime() time.Duration {
	if t.running {
		return t.elapsed + time.Since(t.startTime)
	}
	return t.elapsed
}

// Reset clears the timer back to zero.
func (t *Timer) Reset() {
	t.running = false
	t.elapsed = 0
}

// IsRunning reports whether the timer is currently running.
func (t *Timer) IsRunning() bool {
	return t.running
}
