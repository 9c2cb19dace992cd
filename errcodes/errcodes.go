// File: errcodes.go
// Brief: Canonical error codes surfaced across the Locksmith API: the
// errno values the underlying thread library would return, plus the
// diagnostic codes callers filter on.

package errcodes

import "golang.org/x/sys/unix"

// Code is a thread-library-compatible error code. It is a distinct type
// over unix.Errno so Locksmith's public API never leaks a raw syscall
// dependency into caller signatures while keeping the same numeric values
// as the errno constants callers already know (EDEADLK and so on).
type Code unix.Errno

// Canonical codes surfaced by the tracker's public API.
const (
	// EDEADLK is returned by an error-checking mutex on self-deadlock, and
	// is the code reported for an inversion diagnostic.
	EDEADLK Code = Code(unix.EDEADLK)
	// EINVAL signals a bad argument (e.g. an unrecognized mutex type).
	EINVAL Code = Code(unix.EINVAL)
	// ENOENT signals destroy-of-unknown-lock.
	ENOENT Code = Code(unix.ENOENT)
	// EBUSY signals destroy-while-held.
	EBUSY Code = Code(unix.EBUSY)
	// ENOMEM signals allocation failure inside the tracker.
	ENOMEM Code = Code(unix.ENOMEM)
	// EPERM is returned by an error-checking mutex's Unlock when called by
	// a non-owner.
	EPERM Code = Code(unix.EPERM)
	// ETIMEDOUT is returned by mutex_timedlock when the deadline passes
	// before the real acquisition succeeds. Not a recoverable diagnostic
	// kind (timing out is not itself suspicious), but a real return code
	// mutex_timedlock's signature demands.
	ETIMEDOUT Code = Code(unix.ETIMEDOUT)
	// OK signals success; it is never reported as a diagnostic, only
	// returned from wrapper entry points that mirror the underlying
	// primitive's return value.
	OK Code = 0
)

// String names the code for diagnostic text.
func (c Code) String() string {
	switch c {
	case EDEADLK:
		return "EDEADLK"
	case EINVAL:
		return "EINVAL"
	case ENOENT:
		return "ENOENT"
	case EBUSY:
		return "EBUSY"
	case ENOMEM:
		return "ENOMEM"
	case EPERM:
		return "EPERM"
	case ETIMEDOUT:
		return "ETIMEDOUT"
	case OK:
		return "OK"
	default:
		return unix.Errno(c).Error()
	}
}

// Error implements the error interface so a Code can be returned directly
// from wrapper functions that mirror the underlying primitive's int
// return code.
func (c Code) Error() string {
	return c.String()
}
