package locklib

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kassubek-labs/locksmith/engine"
	"github.com/kassubek-labs/locksmith/errcodes"
)

func TestRWMutexExclusiveLockUnlock(t *testing.T) {
	tr := engine.NewTracker()
	m := NewRWMutex(tr)

	require.NoError(t, m.Lock())
	require.NoError(t, m.Unlock())
}

func TestRWMutexMultipleReaders(t *testing.T) {
	tr := engine.NewTracker()
	m := NewRWMutex(tr)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, m.RLock())
			require.NoError(t, m.RUnlock())
		}()
	}
	wg.Wait()
}

func TestRWMutexRUnlockWithoutRLockReturnsEPERM(t *testing.T) {
	tr := engine.NewTracker()
	m := NewRWMutex(tr)

	err := m.RUnlock()
	assert.Equal(t, errcodes.EPERM, err)
}

func TestRWMutexDestroy(t *testing.T) {
	tr := engine.NewTracker()
	m := NewRWMutex(tr)
	assert.NoError(t, m.Destroy())
}
