package locklib

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kassubek-labs/locksmith/engine"
	"github.com/kassubek-labs/locksmith/errcodes"
	"github.com/kassubek-labs/locksmith/errsink"
)

func withTracker(t *testing.T) (*engine.Tracker, *[]errcodes.Code) {
	t.Helper()
	tr := engine.NewTracker()
	var seen []errcodes.Code
	var mu sync.Mutex
	errsink.SetCallback(func(code errcodes.Code, _ string) {
		mu.Lock()
		seen = append(seen, code)
		mu.Unlock()
	})
	t.Cleanup(func() { errsink.SetCallback(nil) })
	return tr, &seen
}

// TestScenarioS1ABBAInversion mirrors the AB-BA inversion seed: thread A
// acquires L1 then L2 and releases L2 before signaling; thread B then
// takes L2 and trylocks L1, which must report EDEADLK.
func TestScenarioS1ABBAInversion(t *testing.T) {
	tr, seen := withTracker(t)
	l1 := NewMutex(nil, tr)
	l2 := NewMutex(nil, tr)

	ready := make(chan struct{})
	done := make(chan struct{})

	go func() {
		require.NoError(t, l1.Lock())
		require.NoError(t, l2.Lock())
		require.NoError(t, l2.Unlock())
		close(ready)
		<-done
		require.NoError(t, l1.Unlock())
	}()

	<-ready
	require.NoError(t, l2.Lock())
	err := l1.TryLock()
	assert.Equal(t, errcodes.EBUSY, err)
	require.NoError(t, l2.Unlock())
	close(done)

	assert.Contains(t, *seen, errcodes.EDEADLK)
}

// TestScenarioS2CleanOrdering runs two threads acquiring L1 then L2 in
// the same order: no diagnostic should ever be emitted.
func TestScenarioS2CleanOrdering(t *testing.T) {
	tr, seen := withTracker(t)
	l1 := NewMutex(nil, tr)
	l2 := NewMutex(nil, tr)

	worker := func(wg *sync.WaitGroup) {
		defer wg.Done()
		require.NoError(t, l1.Lock())
		require.NoError(t, l2.Lock())
		require.NoError(t, l2.Unlock())
		require.NoError(t, l1.Unlock())
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go worker(&wg)
	go worker(&wg)
	wg.Wait()

	assert.Empty(t, *seen)
}

// TestScenarioS3SelfDeadlockViaUpgrade relocking a default-attribute mutex
// from the same goroutine must return EDEADLK directly via upgrade to
// error-checking semantics. Unlike a cross-thread inversion, self-relock
// is not the order graph's concern and so is never surfaced through the
// diagnostic callback — only the wrapper's own return code carries it.
func TestScenarioS3SelfDeadlockViaUpgrade(t *testing.T) {
	tr, seen := withTracker(t)
	m := NewMutex(nil, tr)

	require.NoError(t, m.Lock())
	err := m.Lock()
	assert.Equal(t, errcodes.EDEADLK, err)
	require.NoError(t, m.Unlock())

	assert.NotContains(t, *seen, errcodes.EDEADLK)
}

// TestScenarioS4DestroyWhileHeld checks init/lock/destroy(EBUSY)/unlock/
// destroy(success).
func TestScenarioS4DestroyWhileHeld(t *testing.T) {
	tr, seen := withTracker(t)
	m := NewMutex(nil, tr)

	require.NoError(t, m.Lock())
	err := m.Destroy()
	assert.Equal(t, errcodes.EBUSY, err)

	require.NoError(t, m.Unlock())
	err = m.Destroy()
	assert.NoError(t, err)

	assert.Contains(t, *seen, errcodes.EBUSY)
}

// TestScenarioS5UnlockNotHeld checks that unlocking a never-locked mutex
// reports the not-owned-unlock diagnostic and returns EPERM.
func TestScenarioS5UnlockNotHeld(t *testing.T) {
	tr, seen := withTracker(t)
	m := NewMutex(nil, tr)

	err := m.Unlock()
	assert.Equal(t, errcodes.EPERM, err)
	assert.Contains(t, *seen, errcodes.EPERM)
}

// TestScenarioS6ThreeLockCycle constructs L1->L2->L3->L1 across three
// goroutines run one after another (run concurrently they would deadlock
// for real before any edge exists); at least one EDEADLK must be reported
// on the cycle-closing acquisition.
func TestScenarioS6ThreeLockCycle(t *testing.T) {
	tr, seen := withTracker(t)
	l1 := NewMutex(nil, tr)
	l2 := NewMutex(nil, tr)
	l3 := NewMutex(nil, tr)

	step := func(wg *sync.WaitGroup, first, second *Mutex) {
		defer wg.Done()
		require.NoError(t, first.Lock())
		time.Sleep(10 * time.Millisecond)
		_ = second.Lock()
		_ = second.Unlock()
		require.NoError(t, first.Unlock())
	}

	var wg sync.WaitGroup
	for _, pair := range [][2]*Mutex{{l1, l2}, {l2, l3}, {l3, l1}} {
		wg.Add(1)
		go step(&wg, pair[0], pair[1])
		wg.Wait()
	}

	assert.Contains(t, *seen, errcodes.EDEADLK)
}

func TestTryLockBusyWhenHeldByOtherThread(t *testing.T) {
	tr, _ := withTracker(t)
	m := NewMutex(nil, tr)

	acquired := make(chan struct{})
	release := make(chan struct{})
	go func() {
		require.NoError(t, m.Lock())
		close(acquired)
		<-release
		require.NoError(t, m.Unlock())
	}()

	<-acquired
	err := m.TryLock()
	assert.Equal(t, errcodes.EBUSY, err)
	close(release)
}

func TestTimedLockExpires(t *testing.T) {
	tr, _ := withTracker(t)
	m := NewMutex(nil, tr)

	acquired := make(chan struct{})
	release := make(chan struct{})
	go func() {
		require.NoError(t, m.Lock())
		close(acquired)
		<-release
		require.NoError(t, m.Unlock())
	}()

	<-acquired
	err := m.TimedLock(time.Now().Add(20 * time.Millisecond))
	assert.Equal(t, errcodes.ETIMEDOUT, err)
	close(release)
}

func TestTimedLockSucceedsBeforeDeadline(t *testing.T) {
	tr, _ := withTracker(t)
	m := NewMutex(nil, tr)

	err := m.TimedLock(time.Now().Add(time.Second))
	assert.NoError(t, err)
	require.NoError(t, m.Unlock())
}

func TestZeroValueMutexUsable(t *testing.T) {
	defer errsink.SetCallback(nil)
	var m Mutex
	require.NoError(t, m.Lock())
	require.NoError(t, m.Unlock())
}
