// Package mapx provides generic map helpers: an insertion-ordered map and
// sorted-key extraction.
package mapx

import (
	"cmp"
	"iter"
	"slices"
)

// OrderedMap is a map that iterates in first-insertion order.
// Re-setting an existing key keeps its original position.
// The zero value is not usable; create instances with NewOrderedMap.
type OrderedMap[K comparable, V any] struct {
	index  map[K]int
	keys   []K
	values []V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{index: make(map[K]int)}
}

// Get returns the value stored under k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	pos, ok := m.index[k]
	if !ok {
		var zero V

		return zero, false
	}

	return m.values[pos], true
}

// Set stores v under k. A new key is appended to the iteration order.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	if pos, ok := m.index[k]; ok {
		m.values[pos] = v

		return
	}

	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.values = append(m.values, v)
}

// GetOrInsert returns the value under k, inserting create() first when k is absent.
// The boolean reports whether the value already existed.
func (m *OrderedMap[K, V]) GetOrInsert(k K, create func() V) (V, bool) {
	if v, ok := m.Get(k); ok {
		return v, true
	}

	v := create()
	m.Set(k, v)

	return v, false
}

// Len returns the number of keys.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	return slices.Clone(m.keys)
}

// Values returns a copy of the values in insertion order.
func (m *OrderedMap[K, V]) Values() []V {
	return slices.Clone(m.values)
}

// All iterates key/value pairs in insertion order.
func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.values[i]) {
				return
			}
		}
	}
}

// SortedKeys returns the keys of m in sorted order.
// Returns nil for a nil map.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	if m == nil {
		return nil
	}

	keys := make([]K, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
