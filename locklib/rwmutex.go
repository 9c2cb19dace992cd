// File: rwmutex.go
// Brief: RWMutex: a shared/exclusive lock wrapper. Reuses the same Hooks
// machinery as Mutex and Spinlock without distinguishing shared from
// exclusive acquisition in the order graph: a reader and a writer racing
// to acquire the same two locks in opposite orders is exactly the
// inversion the tracker detects, regardless of which side took the lock
// for reading.

package locklib

import (
	"sync"

	"github.com/kassubek-labs/locksmith/engine"
	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/errsink"
	"github.com/kassubek-labs/locksmith/locktypes"
	"github.com/kassubek-labs/locksmith/threadstate"
)

// RWMutex is a drop-in replacement for sync.RWMutex that is tracked for
// lock ordering. The zero value is a usable, unlocked RWMutex.
type RWMutex struct {
	initOnce sync.Once
	rw       sync.RWMutex
	tracker  *engine.Tracker

	readersMu sync.Mutex
	readers   map[locktypes.ThreadID]int

	storage byte
}

// NewRWMutex constructs an RWMutex against tracker (DefaultTracker if nil).
func NewRWMutex(tracker *engine.Tracker) *RWMutex {
	m := &RWMutex{}
	m.init(tracker)
	return m
}

func (m *RWMutex) init(tracker *engine.Tracker) {
	m.initOnce.Do(func() {
		if tracker == nil {
			tracker = DefaultTracker
		}
		m.tracker = tracker
		m.readers = make(map[locktypes.ThreadID]int)
		_ = m.tracker.ExplicitInit(m.id(), locktypes.Sleep)
	})
}

func (m *RWMutex) lazyInit() {
	m.initOnce.Do(func() {
		m.tracker = DefaultTracker
		m.readers = make(map[locktypes.ThreadID]int)
		_ = m.tracker.OptionalInit(m.id(), locktypes.Sleep)
	})
}

func (m *RWMutex) id() locktypes.LockID {
	return locktypes.LockID(uintptr(unsafePointerOf(&m.storage)))
}

// Lock acquires the RWMutex for exclusive access.
func (m *RWMutex) Lock() error {
	m.lazyInit()
	if err := m.tracker.PreLock(m.id(), locktypes.Sleep); err != nil {
		return err
	}
	m.rw.Lock()
	m.tracker.PostLock(m.id(), nil)
	return nil
}

// Unlock releases an exclusively held RWMutex.
func (m *RWMutex) Unlock() error {
	m.lazyInit()
	if err := m.tracker.PreUnlock(m.id()); err != nil {
		return err
	}
	m.rw.Unlock()
	m.tracker.PostUnlock(m.id())
	return nil
}

// RLock acquires the RWMutex for shared access. Multiple readers (on
// distinct goroutines) may hold it at once; each is tracked as an
// independent held entry on its own ThreadState, so the order graph sees
// the same held-while-acquiring edges it would for an exclusive lock.
func (m *RWMutex) RLock() error {
	m.lazyInit()
	if err := m.tracker.PreLock(m.id(), locktypes.Sleep); err != nil {
		return err
	}
	m.rw.RLock()

	tid := threadstate.CurrentThreadID()
	m.readersMu.Lock()
	m.readers[tid]++
	m.readersMu.Unlock()

	m.tracker.PostLock(m.id(), nil)
	return nil
}

// RUnlock releases a shared hold. It reports and returns EPERM if the
// calling thread holds no shared lock on this RWMutex, mirroring Mutex's
// unlock-by-non-owner check.
func (m *RWMutex) RUnlock() error {
	m.lazyInit()

	tid := threadstate.CurrentThreadID()
	m.readersMu.Lock()
	if m.readers[tid] == 0 {
		m.readersMu.Unlock()
		errsink.Report(errcodes.EPERM, "read-unlock of lock %#x not held for reading by thread %d", uintptr(m.id()), tid)
		return errcodes.EPERM
	}
	m.readersMu.Unlock()

	if err := m.tracker.PreUnlock(m.id()); err != nil {
		return err
	}

	m.readersMu.Lock()
	m.readers[tid]--
	if m.readers[tid] == 0 {
		delete(m.readers, tid)
	}
	m.readersMu.Unlock()

	m.rw.RUnlock()
	m.tracker.PostUnlock(m.id())
	return nil
}

// Destroy tears down the RWMutex's tracking record.
func (m *RWMutex) Destroy() error {
	m.lazyInit()
	return m.tracker.Destroy(m.id())
}
