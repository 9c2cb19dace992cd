// File: record.go
// Brief: LockRecord, the per-lock node of both the registry table and the
// implicit order graph. Its before/after sets are the graph's storage;
// ordergraph.Reachable treats them through a closure built by Registry,
// keeping the graph algorithm itself free of registry internals.

package registry

import (
	"time"

	"github.com/kassubek-labs/locksmith/collections"
	"github.com/kassubek-labs/locksmith/locktypes"
)

// LockRecord is the registry's entry for one distinct lock.
type LockRecord struct {
	// ID is the lock's address-derived identifier. Immutable after creation.
	ID locktypes.LockID
	// Kind distinguishes sleep mutexes from spinlocks (diagnostic only).
	Kind locktypes.LockKind
	// CreatedAt is the wall-clock time the record was first observed.
	CreatedAt time.Time
	// Destroyed tombstones a record: a destroyed record answers further
	// operations with "not found". Registry.Destroy never sets it — it
	// deletes the record outright, and a destroy refused with EBUSY leaves
	// the record live.
	Destroyed bool

	// before is the set of lock ids ever held at the moment this lock was
	// acquired (incoming edges).
	before collections.Set[locktypes.LockID]
	// after is the set of lock ids this lock was held while acquiring
	// (outgoing edges) — an implementation-internal mirror of before that
	// makes forward DFS reachability O(out-degree) instead of a full
	// table scan per step.
	after collections.Set[locktypes.LockID]
}

func newRecord(id locktypes.LockID, kind locktypes.LockKind, now time.Time) *LockRecord {
	return &LockRecord{
		ID:        id,
		Kind:      kind,
		CreatedAt: now,
		before:    collections.NewSet[locktypes.LockID](),
		after:     collections.NewSet[locktypes.LockID](),
	}
}

// Before returns a snapshot of the record's incoming-edge set.
func (r *LockRecord) Before() []locktypes.LockID {
	return r.before.Items()
}

// After returns a snapshot of the record's outgoing-edge set.
func (r *LockRecord) After() []locktypes.LockID {
	return r.after.Items()
}
