package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartStopAccumulates(t *testing.T) {
	var tm Timer
	assert.False(t, tm.IsRunning())

	tm.Start()
	assert.True(t, tm.IsRunning())
	time.Sleep(5 * time.Millisecond)
	tm.Stop()
	assert.False(t, tm.IsRunning())

	first := tm.GetTime()
	assert.Greater(t, first, time.Duration(0))

	tm.Start()
	time.Sleep(5 * time.Millisecond)
	tm.Stop()
	assert.Greater(t, tm.GetTime(), first)
}

func TestStartNoOpWhenRunning(t *testing.T) {
	var tm Timer
	tm.Start()
	started := tm.startTime
	tm.Start()
	assert.Equal(t, started, tm.startTime)
}

func TestResetClearsElapsed(t *testing.T) {
	var tm Timer
	tm.Start()
	time.Sleep(time.Millisecond)
	tm.Stop()
	tm.Reset()
	assert.Equal(t, time.Duration(0), tm.GetTime())
	assert.False(t, tm.IsRunning())
}

func TestNowReturnsCurrentTime(t *testing.T) {
	before := time.Now()
	got := Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
