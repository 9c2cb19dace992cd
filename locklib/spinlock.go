// File: spinlock.go
// Brief: Spinlock: the drop-in busy-wait lock wrapper. Unlike Mutex, it
// carries no error-checking semantics of its own — self-deadlock and
// unlock-by-non-owner are undefined behavior for a real
// pthread_spinlock_t, and spinlocks are never promoted by
// MutexTypeUpgrade. It still runs the ordering admission check, because
// the check is about acquisition order, not about the primitive's
// internal error checking.

package locklib

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/kassubek-labs/locksmith/engine"
	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/locktypes"
)

// Spinlock is a drop-in replacement for a busy-wait spinlock, tracked for
// lock ordering. The zero value is usable and unlocked.
type Spinlock struct {
	initOnce sync.Once
	state    atomic.Bool
	tracker  *engine.Tracker
	storage  byte
}

// NewSpinlock constructs a Spinlock against tracker (DefaultTracker if
// nil), mirroring pthread_spin_init.
func NewSpinlock(tracker *engine.Tracker) *Spinlock {
	s := &Spinlock{}
	s.initOnce.Do(func() {
		if tracker == nil {
			tracker = DefaultTracker
		}
		s.tracker = tracker
		_ = s.tracker.ExplicitInit(s.id(), locktypes.Spin)
	})
	return s
}

func (s *Spinlock) lazyInit() {
	s.initOnce.Do(func() {
		s.tracker = DefaultTracker
		_ = s.tracker.OptionalInit(s.id(), locktypes.Spin)
	})
}

func (s *Spinlock) id() locktypes.LockID {
	return locktypes.LockID(uintptr(unsafePointerOf(&s.storage)))
}

// Lock busy-waits until the spinlock is available. Self-relock deadlocks
// for real, matching pthread_spinlock_t's documented undefined behavior:
// the tracker still reports the ordering diagnostic ahead of the spin,
// but does not special-case self-relock the way Mutex does.
func (s *Spinlock) Lock() error {
	s.lazyInit()
	if err := s.tracker.PreLock(s.id(), locktypes.Spin); err != nil {
		return err
	}
	for !s.state.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
	s.tracker.PostLock(s.id(), nil)
	return nil
}

// TryLock attempts the CAS once, returning EBUSY on failure.
func (s *Spinlock) TryLock() error {
	s.lazyInit()
	if err := s.tracker.PreLock(s.id(), locktypes.Spin); err != nil {
		return err
	}
	if !s.state.CompareAndSwap(false, true) {
		s.tracker.PostLock(s.id(), errcodes.EBUSY)
		return errcodes.EBUSY
	}
	s.tracker.PostLock(s.id(), nil)
	return nil
}

// Unlock releases the spinlock unconditionally, matching
// pthread_spin_unlock's lack of ownership checking.
func (s *Spinlock) Unlock() error {
	s.lazyInit()
	// PreUnlock reports a not-owned unlock; the release happens regardless.
	_ = s.tracker.PreUnlock(s.id())
	s.state.Store(false)
	s.tracker.PostUnlock(s.id())
	return nil
}

// Destroy tears down the spinlock's tracking record.
func (s *Spinlock) Destroy() error {
	s.lazyInit()
	return s.tracker.Destroy(s.id())
}
