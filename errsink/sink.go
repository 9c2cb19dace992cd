// File: sink.go
// Brief: The error-callback store: a process-wide callback pointer
// protected by a lock, a bounded-length message formatter, and the
// default stderr sink used when no host callback is installed.

package errsink

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/kassubek-labs/locksmith/errcodes"
)

// Color codes for the default sink's terminal output.
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	yellow = "\033[33m"
)

// maxMessageLen bounds the formatted diagnostic text. The callback must
// be safe to invoke while the tracker's internal locks are held, and the
// message it receives is bounded-length so a pathological format string
// can never itself become an allocation hazard on the diagnostic path.
const maxMessageLen = 512

// Callback is the diagnostic sink a host installs. It must not reenter
// Locksmith (no prelock/postlock/etc. calls from within a callback): it
// may be invoked while registry.Registry's lock is held.
type Callback func(code errcodes.Code, message string)

var (
	cb       atomic.Pointer[Callback]
	mu       sync.Mutex // error_cb_lock: guards install/clear of cb
	reported atomic.Int64
)

// SetCallback installs or clears (pass nil) the process-wide diagnostic
// callback. Thread-safe.
func SetCallback(fn Callback) {
	mu.Lock()
	defer mu.Unlock()
	if fn == nil {
		cb.Store(nil)
		return
	}
	cb.Store(&fn)
}

// Report formats a recoverable diagnostic and invokes the installed
// callback, or the default stderr sink if none is installed. This is the
// path used for inversion, not-owned-unlock, double-init and
// destroy-in-use — it never aborts the process.
func Report(code errcodes.Code, format string, args ...any) {
	msg := bound(fmt.Sprintf(format, args...))
	reported.Add(1)

	if p := cb.Load(); p != nil {
		(*p)(code, msg)
		return
	}
	defaultSink(code, msg)
}

// Fatal reports a fatal condition (resource-exhaustion, loader-failure)
// and aborts the process with a message to standard error, since
// continuing would silently disable tracking.
func Fatal(format string, args ...any) {
	msg := bound(fmt.Sprintf(format, args...))
	fmt.Fprintln(os.Stderr, red+"LOCKSMITH FATAL: "+msg+reset)
	os.Exit(1)
}

// defaultSink is the sink used when the host has not installed a
// callback: a plain colorized write to stderr.
func defaultSink(code errcodes.Code, msg string) {
	fmt.Fprintln(os.Stderr, yellow+"locksmith: "+code.String()+": "+msg+reset)
}

func bound(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen-3] + "..."
}

// ReportedCount returns the number of diagnostics reported since the
// process started, or since the last ResetCount. Intended for test
// harnesses that want to assert "no diagnostic was emitted" without
// installing a callback of their own.
func ReportedCount() int64 {
	return reported.Load()
}

// ResetCount zeroes the reported-diagnostics counter. Test-only.
func ResetCount() {
	reported.Store(0)
}
