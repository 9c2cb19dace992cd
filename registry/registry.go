// File: registry.go
// Brief: LockRegistry: the process-wide lock id -> LockRecord table, plus
// the admission check and edge-commit operations that realize the order
// graph's cycle detection over that table.

package registry

import (
	"sync"
	"time"

	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/locktypes"
	"github.com/kassubek-labs/locksmith/memguard"
	"github.com/kassubek-labs/locksmith/ordergraph"
	"github.com/kassubek-labs/locksmith/timer"
)

// InitResult is the outcome of OptionalInit/ExplicitInit.
type InitResult int

const (
	// Created means a new record was allocated.
	Created InitResult = iota
	// AlreadyPresent means a live record already existed for this id.
	AlreadyPresent
)

// Registry is the process-wide lock table. All operations are short and
// non-blocking: no I/O happens while mu is held.
type Registry struct {
	mu    sync.Mutex
	table map[locktypes.LockID]*LockRecord

	// hot accumulates the time spent inside Admit's and CommitEdges'
	// critical sections, for instrumentation of the tracker's hot path.
	hot timer.Timer
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{table: make(map[locktypes.LockID]*LockRecord)}
}

// OptionalInit creates a record for id if one does not already exist
// (create-on-first-use, for locks that only ever saw a static
// initializer). If a live record exists, it is left untouched and
// AlreadyPresent is returned — this operation is always a success.
func (r *Registry) OptionalInit(id locktypes.LockID, kind locktypes.LockKind) (InitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.table[id]; ok && !rec.Destroyed {
		return AlreadyPresent, nil
	}

	if memguard.Exhausted() {
		return 0, errcodes.ENOMEM
	}

	r.table[id] = newRecord(id, kind, timer.Now())
	return Created, nil
}

// ExplicitInit is like OptionalInit but the caller is asserting this is
// the first initialization; an existing live record is a double-init,
// reported by the caller (engine) via errsink, not here — Registry stays
// a storage layer and leaves diagnostic policy to its caller.
func (r *Registry) ExplicitInit(id locktypes.LockID, kind locktypes.LockKind) (InitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.table[id]; ok && !rec.Destroyed {
		return AlreadyPresent, nil
	}

	if memguard.Exhausted() {
		return 0, errcodes.ENOMEM
	}

	r.table[id] = newRecord(id, kind, timer.Now())
	return Created, nil
}

// Destroy removes the record for id. inUse is consulted while the
// registry lock is held and should report whether any ThreadState still
// lists id in its held sequence (engine wires this against the thread
// table; Registry itself has no knowledge of threads).
//
// Returns errcodes.ENOENT if no record exists (callers treat this as
// benign for a statically initialized lock that was never observed), or
// errcodes.EBUSY if inUse reports the lock is still held — in the EBUSY
// case the record is NOT removed.
func (r *Registry) Destroy(id locktypes.LockID, inUse func(locktypes.LockID) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.table[id]
	if !ok || rec.Destroyed {
		return errcodes.ENOENT
	}

	if inUse != nil && inUse(id) {
		return errcodes.EBUSY
	}

	delete(r.table, id)
	return nil
}

// Lookup returns the live record for id, or ok == false if none exists.
func (r *Registry) Lookup(id locktypes.LockID) (*LockRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.table[id]
	if !ok || rec.Destroyed {
		return nil, false
	}
	return rec, true
}

// Admit runs the admission check for a prospective acquisition of
// candidate by a thread currently holding held. It returns the first held
// lock X for which a path candidate -> ... -> X already exists in the
// graph (which would close a cycle X -> ... -> candidate -> X once the
// edges below are committed), or ok == false if no such X is found.
//
// Admit does not mutate the graph; CommitEdges does that on a successful
// real acquisition. Both must be called under Registry's own lock to
// observe a consistent snapshot, which is why both take it themselves
// rather than exposing the table to callers.
func (r *Registry) Admit(candidate locktypes.LockID, held []locktypes.LockID) (conflict locktypes.LockID, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hot.Start()
	defer r.hot.Stop()

	successors := func(id locktypes.LockID) []locktypes.LockID {
		rec, ok := r.table[id]
		if !ok || rec.Destroyed {
			return nil
		}
		return rec.after.Items()
	}

	for _, x := range held {
		if x == candidate {
			// Self-reentry is not the graph's concern: the error-checking
			// mutex beneath the wrapper surfaces EDEADLK for that case.
			continue
		}
		if ordergraph.Reachable(successors, candidate, x) {
			return x, true
		}
	}
	return 0, false
}

// CommitEdges adds an edge from every lock in held to newLock,
// unconditionally, regardless of whether Admit reported a conflict: a
// reported inversion never aborts the real acquisition, so the graph
// always grows to reflect what actually happened. Edges are never
// removed from a live record, even across an intervening Destroy of the
// other endpoint: the destroyed id simply stays in the live record's set
// as a dangling key, resolved to "no record" by Admit's successors
// closure rather than panicking. The destroyed record's own before/after
// sets are deleted with it.
func (r *Registry) CommitEdges(held []locktypes.LockID, newLock locktypes.LockID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hot.Start()
	defer r.hot.Stop()

	target, ok := r.table[newLock]
	if !ok || target.Destroyed {
		return
	}

	for _, x := range held {
		if x == newLock {
			continue
		}
		source, ok := r.table[x]
		if !ok || source.Destroyed {
			continue
		}
		target.before.Add(x)
		source.after.Add(newLock)
	}
}

// HotPathDuration returns the cumulative time spent inside Admit and
// CommitEdges since the registry was created, for callers instrumenting
// tracker overhead.
func (r *Registry) HotPathDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hot.GetTime()
}
