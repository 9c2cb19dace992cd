package locktypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockKindString(t *testing.T) {
	assert.Equal(t, "sleep", Sleep.String())
	assert.Equal(t, "spin", Spin.String())
	assert.Equal(t, "unknown", LockKind(99).String())
}
