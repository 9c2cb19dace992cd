// File: mutex.go
// Brief: Mutex: the drop-in sleep-mutex wrapper host code acquires and
// releases instead of a raw sync.Mutex, instrumented with the Hooks pair
// around every real acquisition/release. It additionally provides
// error-checking semantics (EDEADLK on self-relock, EPERM on
// unlock-by-non-owner) that a bare sync.Mutex cannot, so the real
// critical section is realized over a capacity-1 channel acting as a
// binary semaphore instead.

package locklib

import (
	"sync"
	"time"

	"github.com/kassubek-labs/locksmith/engine"
	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/locktypes"
	"github.com/kassubek-labs/locksmith/mutexattr"
	"github.com/kassubek-labs/locksmith/threadstate"
)

// DefaultTracker is the process-wide Hooks instance used by any Mutex
// constructed via its zero value, mirroring a statically initialized
// PTHREAD_MUTEX_INITIALIZER sharing the one global lock-order graph.
var DefaultTracker = engine.NewTracker()

// Mutex is a drop-in replacement for sync.Mutex that is tracked for lock
// ordering and upgraded to error-checking semantics. The zero value is a
// usable, unlocked mutex of the upgraded default type, exactly as a
// statically initialized pthread_mutex_t is.
type Mutex struct {
	initOnce sync.Once
	sem      chan struct{}
	tracker  *engine.Tracker
	attr     *mutexattr.Attr

	ownerMu sync.Mutex
	locked  bool
	owner   locktypes.ThreadID

	// storage gives every Mutex, including the zero value, a stable,
	// distinct address that id() uses as its LockID.
	storage byte
}

// NewMutex constructs a Mutex with an explicit attribute set and tracker,
// mirroring pthread_mutex_init(&m, attr). A nil tracker uses
// DefaultTracker; a nil attr synthesizes an error-checking default.
func NewMutex(attr *mutexattr.Attr, tracker *engine.Tracker) *Mutex {
	m := &Mutex{}
	m.init(attr, tracker)
	return m
}

func (m *Mutex) init(attr *mutexattr.Attr, tracker *engine.Tracker) {
	m.initOnce.Do(func() {
		if tracker == nil {
			tracker = DefaultTracker
		}
		m.tracker = tracker
		m.attr = mutexattr.Upgrade(attr)
		m.sem = make(chan struct{}, 1)
		_ = m.tracker.ExplicitInit(m.id(), locktypes.Sleep)
	})
}

// lazyInit realizes the zero value's implicit pthread_mutex_init on first
// use, registering against DefaultTracker with a synthesized
// error-checking attribute set, the statically-initialized-lock path.
func (m *Mutex) lazyInit() {
	m.initOnce.Do(func() {
		m.tracker = DefaultTracker
		m.attr = mutexattr.Upgrade(nil)
		m.sem = make(chan struct{}, 1)
		_ = m.tracker.OptionalInit(m.id(), locktypes.Sleep)
	})
}

func (m *Mutex) id() locktypes.LockID {
	return locktypes.LockID(uintptr(unsafePointerOf(&m.storage)))
}

// Lock acquires the mutex, blocking until it is available. It runs the
// admission check before the real acquisition and reports a diagnostic if
// acquiring would close a lock-order cycle, but always proceeds to
// acquire regardless — the diagnostic never blocks the caller. Self-
// relock by the current owner returns EDEADLK immediately without
// reacquiring and without a diagnostic, matching PTHREAD_MUTEX_ERRORCHECK.
func (m *Mutex) Lock() error {
	m.lazyInit()

	if err := m.tracker.PreLock(m.id(), locktypes.Sleep); err != nil {
		return err
	}

	m.ownerMu.Lock()
	if m.locked && m.owner == threadstate.CurrentThreadID() {
		m.ownerMu.Unlock()
		return errcodes.EDEADLK
	}
	m.ownerMu.Unlock()

	m.sem <- struct{}{}

	m.ownerMu.Lock()
	m.locked = true
	m.owner = threadstate.CurrentThreadID()
	m.ownerMu.Unlock()

	m.tracker.PostLock(m.id(), nil)
	return nil
}

// TryLock attempts to acquire the mutex without blocking. It returns
// errcodes.EBUSY if the mutex is already held, matching
// pthread_mutex_trylock. A self-relock attempt returns EDEADLK, without
// a diagnostic, before even attempting the non-blocking acquisition.
func (m *Mutex) TryLock() error {
	m.lazyInit()

	if err := m.tracker.PreLock(m.id(), locktypes.Sleep); err != nil {
		return err
	}

	m.ownerMu.Lock()
	if m.locked && m.owner == threadstate.CurrentThreadID() {
		m.ownerMu.Unlock()
		return errcodes.EDEADLK
	}
	m.ownerMu.Unlock()

	select {
	case m.sem <- struct{}{}:
	default:
		m.tracker.PostLock(m.id(), errcodes.EBUSY)
		return errcodes.EBUSY
	}

	m.ownerMu.Lock()
	m.locked = true
	m.owner = threadstate.CurrentThreadID()
	m.ownerMu.Unlock()

	m.tracker.PostLock(m.id(), nil)
	return nil
}

// TimedLock attempts to acquire the mutex, giving up with
// errcodes.ETIMEDOUT once deadline passes, matching
// pthread_mutex_timedlock.
func (m *Mutex) TimedLock(deadline time.Time) error {
	m.lazyInit()

	if err := m.tracker.PreLock(m.id(), locktypes.Sleep); err != nil {
		return err
	}

	m.ownerMu.Lock()
	if m.locked && m.owner == threadstate.CurrentThreadID() {
		m.ownerMu.Unlock()
		return errcodes.EDEADLK
	}
	m.ownerMu.Unlock()

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case m.sem <- struct{}{}:
	case <-timer.C:
		m.tracker.PostLock(m.id(), errcodes.ETIMEDOUT)
		return errcodes.ETIMEDOUT
	}

	m.ownerMu.Lock()
	m.locked = true
	m.owner = threadstate.CurrentThreadID()
	m.ownerMu.Unlock()

	m.tracker.PostLock(m.id(), nil)
	return nil
}

// Unlock releases the mutex. It reports and returns EPERM if the calling
// thread is not the current owner, matching PTHREAD_MUTEX_ERRORCHECK,
// rather than silently unlocking or panicking as sync.Mutex does.
func (m *Mutex) Unlock() error {
	m.lazyInit()

	if err := m.tracker.PreUnlock(m.id()); err != nil {
		return err
	}

	m.ownerMu.Lock()
	if !m.locked || m.owner != threadstate.CurrentThreadID() {
		m.ownerMu.Unlock()
		return errcodes.EPERM
	}
	m.locked = false
	m.ownerMu.Unlock()

	<-m.sem

	m.tracker.PostUnlock(m.id())
	return nil
}

// Destroy tears down the mutex's tracking record, mirroring
// pthread_mutex_destroy. It returns EBUSY without destroying anything if
// the mutex is currently held.
func (m *Mutex) Destroy() error {
	m.lazyInit()
	return m.tracker.Destroy(m.id())
}
