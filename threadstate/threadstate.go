// File: threadstate.go
// Brief: ThreadState, the per-thread held-set, and the process-wide
// thread table used to find each thread's state and for teardown.

package threadstate

import (
	"sync"
	"time"

	"github.com/petermattis/goid"

	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/locktypes"
	"github.com/kassubek-labs/locksmith/registry"
	"github.com/kassubek-labs/locksmith/timer"
)

// ThreadID is the goroutine id of the calling goroutine, the analogue of
// the OS thread id ThreadState is keyed by.
type ThreadID = locktypes.ThreadID

// CurrentThreadID returns the calling goroutine's id.
func CurrentThreadID() ThreadID {
	return ThreadID(goid.Get())
}

// HeldEntry is one element of a thread's held sequence.
type HeldEntry struct {
	Lock *registry.LockRecord
	// Depth is always 1: the tracker never models recursive locks.
	Depth int
	// AcquiredAt is the wall-clock time of acquisition (diagnostic only).
	AcquiredAt time.Time
}

// ThreadState is the per-thread held-set. Accessed only by its owning
// goroutine in ordinary use, so Push/Pop/Snapshot take no lock of their
// own; Table below supplies the process-wide visibility needed for
// Registry.Destroy's "in use" check.
type ThreadState struct {
	ID   ThreadID
	Name string
	held []HeldEntry
}

// Push records lock as newly acquired by the thread, most-recently-last.
func (t *ThreadState) Push(lock *registry.LockRecord) {
	t.held = append(t.held, HeldEntry{Lock: lock, Depth: 1, AcquiredAt: timer.Now()})
}

// Pop removes lock from the held sequence. It signals errcodes.EPERM
// ("not held") if the lock is not present anywhere in held — surfaced
// by the caller as the not-owned-unlock diagnostic.
func (t *ThreadState) Pop(id locktypes.LockID) error {
	for i := len(t.held) - 1; i >= 0; i-- {
		if t.held[i].Lock.ID == id {
			t.held = append(t.held[:i], t.held[i+1:]...)
			return nil
		}
	}
	return errcodes.EPERM
}

// Holds reports whether id is anywhere in the held sequence.
func (t *ThreadState) Holds(id locktypes.LockID) bool {
	for _, e := range t.held {
		if e.Lock.ID == id {
			return true
		}
	}
	return false
}

// HeldIDs returns the ids of the currently held locks, oldest first.
func (t *ThreadState) HeldIDs() []locktypes.LockID {
	ids := make([]locktypes.LockID, len(t.held))
	for i, e := range t.held {
		ids[i] = e.Lock.ID
	}
	return ids
}

// Snapshot returns a copy of the held sequence.
func (t *ThreadState) Snapshot() []HeldEntry {
	out := make([]HeldEntry, len(t.held))
	copy(out, t.held)
	return out
}

// Empty reports whether the thread currently holds no locks.
func (t *ThreadState) Empty() bool {
	return len(t.held) == 0
}

// Table is the process-wide thread id -> ThreadState map. It is guarded
// by its own lock, separate from the registry's, so that at most one of
// the two is held at a time. sync.Map stands in for a thread-local cache
// of a thread's own state — there is no portable thread-local storage
// here, so every lookup is a map read, but sync.Map is tuned for exactly
// this read-mostly, stable-key workload.
type Table struct {
	states sync.Map // ThreadID -> *ThreadState
}

// NewTable returns an empty thread table.
func NewTable() *Table {
	return &Table{}
}

// GetOrCreate returns the calling thread's ThreadState, creating it
// lazily on first use.
func (t *Table) GetOrCreate(id ThreadID) *ThreadState {
	if v, ok := t.states.Load(id); ok {
		return v.(*ThreadState)
	}
	ts := &ThreadState{ID: id}
	actual, _ := t.states.LoadOrStore(id, ts)
	return actual.(*ThreadState)
}

// Get returns the thread's state if it has ever performed a tracked
// operation, or ok == false otherwise.
func (t *Table) Get(id ThreadID) (*ThreadState, bool) {
	v, ok := t.states.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*ThreadState), true
}

// Remove tears down a thread's state, e.g. on thread exit.
func (t *Table) Remove(id ThreadID) {
	t.states.Delete(id)
}

// AnyHolds reports whether any tracked thread currently holds id. Used
// by engine to satisfy Registry.Destroy's inUse predicate.
func (t *Table) AnyHolds(id locktypes.LockID) bool {
	held := false
	t.states.Range(func(_, v any) bool {
		if v.(*ThreadState).Holds(id) {
			held = true
			return false
		}
		return true
	})
	return held
}
