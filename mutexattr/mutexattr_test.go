package mutexattr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpgradeNilSynthesizesErrorCheck(t *testing.T) {
	got := Upgrade(nil)
	assert.Equal(t, ErrorCheck, got.Type)
	assert.False(t, got.Shared)
}

func TestUpgradePromotesCompatibleTypes(t *testing.T) {
	for _, typ := range []Type{Normal, Default, Timed, Adaptive, Fast} {
		got := Upgrade(&Attr{Type: typ, Shared: true})
		assert.Equal(t, ErrorCheck, got.Type)
		assert.True(t, got.Shared)
	}
}

func TestUpgradeLeavesRecursiveUnchanged(t *testing.T) {
	got := Upgrade(&Attr{Type: Recursive})
	assert.Equal(t, Recursive, got.Type)
}

func TestUpgradeLeavesErrorCheckUnchanged(t *testing.T) {
	got := Upgrade(&Attr{Type: ErrorCheck})
	assert.Equal(t, ErrorCheck, got.Type)
}
