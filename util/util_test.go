package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	t.Run("insert and contains", func(t *testing.T) {
		s := NewSet(1, 2, 3)
		require.Equal(t, 3, s.Len())
		require.True(t, s.Contains(2))
		require.False(t, s.Contains(9))
	})
	t.Run("insert new reports novelty", func(t *testing.T) {
		s := NewSet[int]()
		require.True(t, s.InsertNew(1))
		require.False(t, s.InsertNew(1))
	})
	t.Run("clone is independent", func(t *testing.T) {
		s := NewSet(1, 2)
		c := s.Clone()
		c.Insert(3)
		require.False(t, s.Contains(3))
		require.True(t, c.Contains(3))
	})
	t.Run("for each can stop early", func(t *testing.T) {
		s := NewSet(1, 2, 3, 4)
		seen := 0
		s.ForEach(func(int) bool {
			seen++
			return seen < 2
		})
		require.Equal(t, 2, seen)
	})
}

func TestCapSum(t *testing.T) {
	t.Run("plain sum under cap", func(t *testing.T) {
		require.Equal(t, int64(5), CapSum(2, 3, CapInt64))
	})
	t.Run("saturates at cap", func(t *testing.T) {
		require.Equal(t, CapInt64, CapSum(CapInt64, CapInt64, CapInt64))
	})
	t.Run("negative wraparound treated as overflow", func(t *testing.T) {
		require.Equal(t, int64(100), CapSum(math.MaxInt64, 1, 100))
	})
}

func TestSortKeys(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	keys := SortKeys(m, func(a, b string) bool { return a < b })
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestAssert(t *testing.T) {
	t.Run("passes silently", func(t *testing.T) {
		require.NotPanics(t, func() { Assertf(true, "unreachable") })
	})
	t.Run("panics with message", func(t *testing.T) {
		require.PanicsWithValue(t, "assertion failed: boom 7", func() {
			Assertf(false, "boom %d", 7)
		})
	})
	t.Run("assert no error is a no-op on nil", func(t *testing.T) {
		require.NotPanics(t, func() { AssertNoError(nil) })
	})
}
