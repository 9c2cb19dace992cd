// File: ordergraph.go
// Brief: The order graph's reachability algorithm. Reachable answers "is
// target reachable from start by following existing held-while-acquiring
// edges", the question an admission check needs to decide whether a
// prospective acquisition would close a cycle.
//
// This package holds no state of its own: the graph is conceptually
// distinct from, but embedded inside, LockRegistry/LockRecord.
// registry.Registry supplies the edge data through a SuccessorFunc
// closure built under its own lock.

package ordergraph

import "github.com/kassubek-labs/locksmith/collections"
import "github.com/kassubek-labs/locksmith/locktypes"

// SuccessorFunc returns the ids directly reachable from id via one edge
// (id's outgoing/"after" set), or nil if id has no record.
type SuccessorFunc func(id locktypes.LockID) []locktypes.LockID

// Reachable reports whether target is reachable from start by following
// zero or more successor edges. start == target is considered reachable
// (the empty path), matching the use the admission check makes of it: a
// caller that already holds target and now targets start would close a
// cycle either via a nonempty path or via immediate reentry, but reentry
// is caught by the error-checking mutex instead, so callers are expected
// to exclude start == target themselves when that distinction matters.
func Reachable(successors SuccessorFunc, start, target locktypes.LockID) bool {
	if start == target {
		return true
	}

	visited := collections.NewSet[locktypes.LockID]()
	var stack collections.Stack[locktypes.LockID]
	stack.Push(start)

	for !stack.IsEmpty() {
		cur := stack.Pop()
		if visited.Contains(cur) {
			continue
		}
		visited.Add(cur)

		for _, next := range successors(cur) {
			if next == target {
				return true
			}
			if !visited.Contains(next) {
				stack.Push(next)
			}
		}
	}
	return false
}
