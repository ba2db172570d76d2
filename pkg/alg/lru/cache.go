// Package lru provides a generic thread-safe LRU cache bounded by entry count.
package lru

import (
	"sync"
	"sync/atomic"
)

// entry is a doubly-linked list node holding a key-value pair.
type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

// Cache is a thread-safe generic LRU cache.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	head    *entry[K, V] // Most recently used.
	tail    *entry[K, V] // Least recently used.

	maxEntries int

	// Metrics (atomic for lock-free reads).
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache holding at most maxEntries entries. It panics when
// maxEntries is not positive.
func New[K comparable, V any](maxEntries int) *Cache[K, V] {
	if maxEntries <= 0 {
		panic("lru: maxEntries must be positive")
	}

	return &Cache[K, V]{
		entries:    make(map[K]*entry[K, V], maxEntries),
		maxEntries: maxEntries,
	}
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)
	c.moveToFront(ent)

	return ent.value, true
}

// Put adds or updates a key-value pair, evicting the least recently used
// entry when the cache is full.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		ent.value = value
		c.moveToFront(ent)

		return
	}

	for len(c.entries) >= c.maxEntries && c.tail != nil {
		c.evictTail()
	}

	ent := &entry[K, V]{key: key, value: value}
	c.entries[key] = ent
	c.addToFront(ent)
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. compute runs outside the lock.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}

	v := compute()
	c.Put(key, v)

	return v
}

// Clear removes all entries. Metrics are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V], c.maxEntries)
	c.head = nil
	c.tail = nil
}

func (c *Cache[K, V]) evictTail() {
	victim := c.tail
	c.removeFromList(victim)
	delete(c.entries, victim.key)
}

func (c *Cache[K, V]) moveToFront(ent *entry[K, V]) {
	if ent == c.head {
		return
	}

	c.removeFromList(ent)
	c.addToFront(ent)
}

func (c *Cache[K, V]) addToFront(ent *entry[K, V]) {
	ent.prev = nil
	ent.next = c.head

	if c.head != nil {
		c.head.prev = ent
	}

	c.head = ent

	if c.tail == nil {
		c.tail = ent
	}
}

func (c *Cache[K, V]) removeFromList(ent *entry[K, V]) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.head = ent.next
	}

	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.tail = ent.prev
	}
}
