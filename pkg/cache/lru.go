package cache

import (
	"container/list"
	"sync"
)

// EvictFunc is called for every entry removed from the cache, whether by
// capacity eviction, replacement, Delete, or Clear. It is the sole mechanism
// by which the cache's owner releases resources tied to an entry.
type EvictFunc[K comparable, V any] func(key K, value V)

// LRU is a fixed-capacity least-recently-used cache with an eviction
// callback. All operations are O(1) and safe for concurrent use.
//
// The eviction callback fires synchronously, before the triggering operation
// returns:
//   - Set at full capacity evicts exactly the single oldest entry.
//   - Set on an existing key fires the callback for the value being replaced.
//   - Delete and Clear fire the callback for every removed entry.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[K]*list.Element
	order    *list.List // front = most recently used
	onEvict  EvictFunc[K, V]
}

// lruItem holds an entry in the LRU list.
// The key is stored redundantly to enable O(1) removal from the tail.
type lruItem[K comparable, V any] struct {
	key   K
	value V
}

// NewLRU creates an LRU with the given capacity.
// A nil onEvict is allowed. Panics if capacity < 1.
func NewLRU[K comparable, V any](capacity int, onEvict EvictFunc[K, V]) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be >= 1")
	}
	return &LRU[K, V]{
		capacity: capacity,
		entries:  make(map[K]*list.Element, capacity),
		order:    list.New(),
		onEvict:  onEvict,
	}
}

// Get retrieves a value and promotes it to most-recently-used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	c.order.MoveToFront(elem)
	return elem.Value.(*lruItem[K, V]).value, true
}

// Peek retrieves a value without promoting it.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return elem.Value.(*lruItem[K, V]).value, true
}

// Contains reports whether key is present, without promoting it.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Set stores a value at most-recently-used position.
//
// If the key already exists, the old value is evicted (callback fires) and
// the entry is re-inserted at MRU. If the cache is at capacity, the single
// oldest entry is evicted first.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()

	if elem, ok := c.entries[key]; ok {
		item := elem.Value.(*lruItem[K, V])
		old := item.value
		item.value = value
		c.order.MoveToFront(elem)
		c.mu.Unlock()

		if c.onEvict != nil {
			c.onEvict(key, old)
		}
		return
	}

	var evictedKey K
	var evictedValue V
	evicted := false

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			item := oldest.Value.(*lruItem[K, V])
			c.order.Remove(oldest)
			delete(c.entries, item.key)
			evictedKey, evictedValue = item.key, item.value
			evicted = true
		}
	}

	elem := c.order.PushFront(&lruItem[K, V]{key: key, value: value})
	c.entries[key] = elem
	c.mu.Unlock()

	if evicted && c.onEvict != nil {
		c.onEvict(evictedKey, evictedValue)
	}
}

// Delete removes an entry, firing the eviction callback if it was present.
// Returns true if the entry existed.
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()

	elem, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return false
	}

	item := elem.Value.(*lruItem[K, V])
	c.order.Remove(elem)
	delete(c.entries, key)
	c.mu.Unlock()

	if c.onEvict != nil {
		c.onEvict(item.key, item.value)
	}
	return true
}

// Clear removes all entries, firing the eviction callback for each in
// oldest-first order.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()

	removed := make([]*lruItem[K, V], 0, c.order.Len())
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		removed = append(removed, elem.Value.(*lruItem[K, V]))
	}
	c.entries = make(map[K]*list.Element, c.capacity)
	c.order = list.New()
	c.mu.Unlock()

	if c.onEvict != nil {
		for _, item := range removed {
			c.onEvict(item.key, item.value)
		}
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*lruItem[K, V]).key)
	}
	return keys
}
