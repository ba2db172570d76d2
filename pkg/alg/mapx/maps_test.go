package mapx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMap(t *testing.T) {
	t.Parallel()

	t.Run("preserves_first_insertion_order", func(t *testing.T) {
		t.Parallel()

		m := NewOrderedMap[string, int]()
		m.Set("viking", 1)
		m.Set("lurker", 2)
		m.Set("observer", 3)
		m.Set("viking", 10)

		assert.Equal(t, []string{"viking", "lurker", "observer"}, m.Keys())
		assert.Equal(t, []int{10, 2, 3}, m.Values())
		assert.Equal(t, 3, m.Len())
	})

	t.Run("get_missing", func(t *testing.T) {
		t.Parallel()

		m := NewOrderedMap[string, int]()

		v, ok := m.Get("nope")
		assert.False(t, ok)
		assert.Zero(t, v)
	})

	t.Run("get_or_insert", func(t *testing.T) {
		t.Parallel()

		m := NewOrderedMap[string, *int]()
		calls := 0
		create := func() *int {
			calls++

			return new(int)
		}

		first, existed := m.GetOrInsert("a", create)
		require.False(t, existed)

		*first += 5

		second, existed := m.GetOrInsert("a", create)
		require.True(t, existed)

		assert.Equal(t, 5, *second)
		assert.Equal(t, 1, calls)
	})

	t.Run("all_stops_early", func(t *testing.T) {
		t.Parallel()

		m := NewOrderedMap[int, string]()
		m.Set(3, "c")
		m.Set(1, "a")
		m.Set(2, "b")

		var seen []int

		for k := range m.All() {
			seen = append(seen, k)
			if len(seen) == 2 {
				break
			}
		}

		assert.Equal(t, []int{3, 1}, seen)
	})

	t.Run("keys_are_copies", func(t *testing.T) {
		t.Parallel()

		m := NewOrderedMap[string, int]()
		m.Set("x", 1)

		keys := m.Keys()
		keys[0] = "mutated"

		assert.Equal(t, []string{"x"}, m.Keys())
	})
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()

	t.Run("nil_returns_nil", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, SortedKeys[int, string](nil))
	})

	t.Run("sorted_ints", func(t *testing.T) {
		t.Parallel()

		got := SortedKeys(map[int]string{2: "b", 1: "a", 3: "c"})
		assert.Equal(t, []int{1, 2, 3}, got)
	})
}
