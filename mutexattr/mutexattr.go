// File: mutexattr.go
// Brief: The policy for promoting a caller-declared mutex attribute set
// to error-checking where doing so is safe.

package mutexattr

// Type is the caller-declared mutex type, the Go-side mirror of the
// PTHREAD_MUTEX_* family pthread_mutexattr_settype would take.
type Type int

const (
	// Normal is the fastest type: no error checking, deadlocks on
	// self-relock and undefined behavior on unlock-by-non-owner.
	Normal Type = iota
	// Default is the platform's default type (commonly equivalent to
	// Normal, sometimes to ErrorCheck; see compatible set below).
	Default
	// Timed behaves like Normal but supports timed locking.
	Timed
	// Adaptive spins briefly before sleeping; no error checking.
	Adaptive
	// Fast is a vendor-specific fast-path variant with no error checking.
	Fast
	// Recursive allows the owner to relock without deadlocking. Never
	// promoted: promoting it would change its observable contract.
	Recursive
	// ErrorCheck already returns EDEADLK on self-relock and EPERM on
	// unlock-by-non-owner. Never "promoted" because it already is one.
	ErrorCheck
)

// compatible is the platform's subset of types whose contract requires
// neither recursion nor any other non-error-checking behavior, i.e. the
// ones it is safe to promote.
var compatible = map[Type]bool{
	Normal:   true,
	Default:  true,
	Timed:    true,
	Adaptive: true,
	Fast:     true,
}

// Attr is a mutex attribute set as the caller declared it.
type Attr struct {
	Type Type
	// Shared mirrors pthread_spin_init's `shared` argument
	// (PROCESS_SHARED vs PROCESS_PRIVATE). It is carried through
	// unchanged by Upgrade and is not read anywhere else: neither
	// tracking logic nor diagnostic text uses it, and Spinlock takes no
	// Attr.
	Shared bool
}

// Upgrade returns the attribute set the wrapper should actually use to
// initialize the mutex: attr with Type promoted to ErrorCheck if attr's
// declared type is in the compatible set, or attr unchanged otherwise
// (Recursive and ErrorCheck pass through as-is). If attr is nil, Upgrade
// synthesizes an error-checking attribute set from scratch.
func Upgrade(attr *Attr) *Attr {
	if attr == nil {
		return &Attr{Type: ErrorCheck}
	}
	if compatible[attr.Type] {
		return &Attr{Type: ErrorCheck, Shared: attr.Shared}
	}
	out := *attr
	return &out
}
