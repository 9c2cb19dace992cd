package collections

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAddContainsRemove(t *testing.T) {
	s := NewSet[int]()
	assert.False(t, s.Contains(1))

	s.Add(1)
	s.Add(2)
	assert.True(t, s.Contains(1))
	assert.Equal(t, 2, s.Len())

	s.Remove(1)
	assert.False(t, s.Contains(1))
	assert.Equal(t, 1, s.Len())
}

func TestSetZeroValueAddIsSafe(t *testing.T) {
	var s Set[string]
	s.Add("a")
	assert.True(t, s.Contains("a"))
}

func TestSetItemsAndClone(t *testing.T) {
	s := NewSet[int]()
	s.Add(1)
	s.Add(2)
	s.Add(3)

	items := s.Items()
	sort.Ints(items)
	assert.Equal(t, []int{1, 2, 3}, items)

	clone := s.Clone()
	clone.Remove(1)
	assert.True(t, s.Contains(1), "clone must be independent of the original")
	assert.False(t, clone.Contains(1))
}
