// File: memguard.go
// Brief: Background RAM/swap supervisor backing the resource-exhaustion
// policy: continuing to track locks under critical memory pressure would
// silently disable tracking, so the tracker aborts instead. The registry
// consults Exhausted() before any allocation on the hot path; the
// supervisor itself never runs on that path, so prelock/postlock/init/
// destroy/lookup stay free of I/O while holding the registry's lock.

package memguard

import (
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/mem"

	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/errsink"
)

var exhausted atomic.Bool

// Supervisor periodically checks available RAM and swap. If the process
// is critically low on either, it marks the tracker exhausted: future
// allocations inside the registry fail fatally instead of racing an OOM
// kill with a half-updated order graph. Intended to run as
// `go memguard.Supervisor()` once at process start.
func Supervisor() {
	v, err := mem.VirtualMemory()
	if err != nil {
		return
	}
	s, err := mem.SwapMemory()
	if err != nil {
		return
	}

	thresholdRAM := uint64(float64(v.Total) * 0.02)
	const thresholdSwap = uint64(1024 * 1024 * 1024) // 1GB
	startSwap := s.Used

	for {
		v, err = mem.VirtualMemory()
		if err == nil && v.Available < thresholdRAM {
			trip()
			time.Sleep(5 * time.Second)
			continue
		}

		s, err = mem.SwapMemory()
		if err == nil && s.Used > thresholdSwap+startSwap {
			trip()
			time.Sleep(5 * time.Second)
			continue
		}

		time.Sleep(500 * time.Millisecond)
	}
}

// trip marks the tracker exhausted, dumps all goroutine stacks for
// postmortem diagnosis, and nudges the Go runtime to reclaim memory
// before the caller's Fatal abort takes effect.
func trip() {
	if exhausted.CompareAndSwap(false, true) {
		dumpAllGoroutines()
	}
	runtime.GC()
	debug.FreeOSMemory()
}

// Exhausted reports whether the supervisor has observed a critical
// memory condition. registry.Registry consults this before creating a
// new LockRecord; ThreadState creation does not consult it.
func Exhausted() bool {
	return exhausted.Load()
}

// Reset clears the exhausted flag. Test-only.
func Reset() {
	exhausted.Store(false)
}

// dumpAllGoroutines writes the stack traces of every goroutine to the
// installed error sink, so a resource-exhaustion abort leaves a trail of
// what was running when the tracker gave up.
func dumpAllGoroutines() {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	errsink.Report(errcodes.ENOMEM, "memory pressure detected; goroutine dump:\n%s", buf[:n])
}
