package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackPushPopOrder(t *testing.T) {
	var s Stack[int]
	assert.True(t, s.IsEmpty())

	s.Push(1)
	s.Push(2)
	s.Push(3)
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, 3, s.Peek())

	assert.Equal(t, 3, s.Pop())
	assert.Equal(t, 2, s.Pop())
	assert.Equal(t, 1, s.Pop())
	assert.True(t, s.IsEmpty())
}

func TestStackPopEmptyReturnsZeroValue(t *testing.T) {
	var s Stack[string]
	assert.Equal(t, "", s.Pop())
	assert.Equal(t, "", s.Peek())
}
