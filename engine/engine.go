// File: engine.go
// Brief: The prelock/postlock/preunlock/postunlock contract the
// interposer — here, locklib's wrapper types — calls around every real
// acquisition. Tracker owns the Registry and the thread Table and is the
// only component that touches both, so it is the one place the ordering
// discipline between the two locks has to be argued explicitly: no
// method below touches the thread table (via sync.Map) while a Registry
// call is in flight — each Registry call returns before the thread table
// is read or written again.

package engine

import (
	"fmt"

	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/errsink"
	"github.com/kassubek-labs/locksmith/locktypes"
	"github.com/kassubek-labs/locksmith/registry"
	"github.com/kassubek-labs/locksmith/threadstate"
)

// Tracker is the lock-tracking engine: one instance per process (or, for
// testing, one per test case — see NewTracker).
type Tracker struct {
	registry *registry.Registry
	threads  *threadstate.Table
}

// NewTracker returns a fresh, empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		registry: registry.New(),
		threads:  threadstate.NewTable(),
	}
}

// ExplicitInit registers id as a freshly initialized lock. If a live
// record already exists, it reports a double-init diagnostic and leaves
// the existing record in place — init proceeds either way.
func (t *Tracker) ExplicitInit(id locktypes.LockID, kind locktypes.LockKind) error {
	res, err := t.registry.ExplicitInit(id, kind)
	if err != nil {
		t.fatalAlloc(id)
		return err
	}
	if res == registry.AlreadyPresent {
		errsink.Report(errcodes.EINVAL, "double-init of lock %#x", uintptr(id))
	}
	return nil
}

// OptionalInit registers id if it has not been seen before, silently
// succeeding either way — the create-on-first-use path used for
// statically initialized locks.
func (t *Tracker) OptionalInit(id locktypes.LockID, kind locktypes.LockKind) error {
	_, err := t.registry.OptionalInit(id, kind)
	if err != nil {
		t.fatalAlloc(id)
		return err
	}
	return nil
}

// Destroy removes the record for id. ENOENT is benign and not reported —
// the lock may have been statically initialized and never interacted
// with; EBUSY is reported and the record is retained.
func (t *Tracker) Destroy(id locktypes.LockID) error {
	// The thread table is consulted before the registry lock is taken.
	held := t.threads.AnyHolds(id)
	err := t.registry.Destroy(id, func(locktypes.LockID) bool { return held })
	if err == errcodes.EBUSY {
		errsink.Report(errcodes.EBUSY, "destroy of lock %#x while still held by a thread", uintptr(id))
	}
	return err
}

// PreLock runs the admission check ahead of a real acquisition of id by
// the calling thread. It ensures a record exists (optional-init), checks
// whether acquiring id would close a cycle given the calling thread's
// current held set, and reports an inversion diagnostic if so — the
// diagnostic never blocks the caller from attempting the real
// acquisition next.
func (t *Tracker) PreLock(id locktypes.LockID, kind locktypes.LockKind) error {
	if _, err := t.registry.OptionalInit(id, kind); err != nil {
		t.fatalAlloc(id)
		return err
	}

	tid := threadstate.CurrentThreadID()
	ts := t.threads.GetOrCreate(tid)
	held := ts.HeldIDs()

	if conflict, found := t.registry.Admit(id, held); found {
		errsink.Report(errcodes.EDEADLK,
			"lock inversion / potential deadlock: thread %d holds %#x and is acquiring %#x, but %#x was previously acquired while %#x was held",
			tid, uintptr(conflict), uintptr(id), uintptr(conflict), uintptr(id))
	}
	return nil
}

// PostLock completes the acquisition of id by the calling thread. If
// realCode is nil (the real primitive's acquisition succeeded), edges are
// committed from every lock the thread currently holds to id, and id is
// pushed onto the thread's held sequence. If realCode is non-nil (e.g. a
// failed trylock/timedlock), PostLock is a no-op on both the graph and
// the held set.
func (t *Tracker) PostLock(id locktypes.LockID, realCode error) {
	if realCode != nil {
		return
	}

	tid := threadstate.CurrentThreadID()
	ts := t.threads.GetOrCreate(tid)
	held := ts.HeldIDs()

	t.registry.CommitEdges(held, id)

	rec, ok := t.registry.Lookup(id)
	if !ok {
		// Raced with a concurrent Destroy between PreLock and PostLock's
		// real acquisition; nothing to attach the held entry to.
		return
	}
	ts.Push(rec)
}

// PreUnlock verifies id is in the calling thread's held sequence ahead of
// a real unlock. It does not remove the entry yet — PostUnlock does that
// — so that a failed underlying unlock leaves the held set intact.
func (t *Tracker) PreUnlock(id locktypes.LockID) error {
	tid := threadstate.CurrentThreadID()
	ts, ok := t.threads.Get(tid)
	if !ok || !ts.Holds(id) {
		errsink.Report(errcodes.EPERM, "unlock of lock %#x not held by thread %d", uintptr(id), tid)
		return errcodes.EPERM
	}
	return nil
}

// PostUnlock removes id from the calling thread's held sequence.
func (t *Tracker) PostUnlock(id locktypes.LockID) {
	tid := threadstate.CurrentThreadID()
	ts, ok := t.threads.Get(tid)
	if !ok {
		return
	}
	_ = ts.Pop(id)
}

// ThreadExit tears down the calling thread's state. A host that models
// threads explicitly (rather than relying on goroutines simply vanishing)
// should call this on thread exit to bound the thread table's size.
func (t *Tracker) ThreadExit() {
	t.threads.Remove(threadstate.CurrentThreadID())
}

func (t *Tracker) fatalAlloc(id locktypes.LockID) {
	errsink.Fatal(fmt.Sprintf("resource exhaustion allocating record for lock %#x", uintptr(id)))
}
