package frame

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestScopeReleaseOrder(t *testing.T) {
	var order []int
	var s Scope
	for i := 0; i < 3; i++ {
		i := i
		s.Add(func() { order = append(order, i) })
	}
	assert.Equal(t, 3, s.Len())

	s.Release()
	assert.Equal(t, []int{2, 1, 0}, order)
	assert.Equal(t, 0, s.Len())

	s.Release()
	assert.Equal(t, []int{2, 1, 0}, order, "second release is a no-op")
}

func TestScopeReleaseOnError(t *testing.T) {
	build := func(fail bool) (released bool, moved Scope) {
		var err error
		func() {
			var s Scope
			defer s.ReleaseOnError(&err)
			s.Add(func() { released = true })
			if fail {
				err = errors.New("step failed")
				return
			}
			moved = s.Move()
		}()
		return released, moved
	}

	released, moved := build(true)
	assert.True(t, released)
	assert.Equal(t, 0, moved.Len())

	released, moved = build(false)
	assert.False(t, released)
	assert.Equal(t, 1, moved.Len())
	moved.Release()
}

func TestScopeMove(t *testing.T) {
	calls := 0
	var s Scope
	s.Add(func() { calls++ })
	owner := s.Move()

	s.Release()
	assert.Equal(t, 0, calls)

	owner.Release()
	assert.Equal(t, 1, calls)
}
