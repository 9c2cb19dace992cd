package memguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExhaustedDefaultsFalse(t *testing.T) {
	Reset()
	assert.False(t, Exhausted())
}

func TestResetClearsExhausted(t *testing.T) {
	exhausted.Store(true)
	assert.True(t, Exhausted())
	Reset()
	assert.False(t, Exhausted())
}
