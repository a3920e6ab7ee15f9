// Package lru is a small thread-safe LRU cache, used to keep parsed query
// expressions across the instances of a view.
package lru

import (
	"container/list"
	"sync"
)

// EvictCallback is used to get a callback when a cache entry is evicted
type EvictCallback[K comparable, V any] func(key K, value V)

// LRU implements a thread-safe LRU
type LRU[K comparable, V any] struct {
	size      int
	evictList *list.List
	items     map[K]*list.Element
	onEvict   EvictCallback[K, V]
	mu        sync.Mutex
}

// Entry an item of the cache
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// NewLRU returns a new thread-safe cache.
//
// Size parameter set to 0 makes cache of unlimited size, e.g. turns LRU mechanism off.
func NewLRU[K comparable, V any](size int, onEvict EvictCallback[K, V]) *LRU[K, V] {
	if size < 0 {
		size = 0
	}
	return &LRU[K, V]{
		size:      size,
		evictList: list.New(),
		items:     make(map[K]*list.Element),
		onEvict:   onEvict,
	}
}

// Purge clears the cache completely.
// onEvict is called for each evicted key.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if c.onEvict != nil {
			c.onEvict(k, e.Value.(*Entry[K, V]).Value)
		}
		delete(c.items, k)
	}
	c.evictList.Init()
}

// Add adds a value to the cache. Returns true if an eviction occurred.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.evictList.MoveToFront(e)
		e.Value.(*Entry[K, V]).Value = value
		return false
	}

	c.items[key] = c.evictList.PushFront(&Entry[K, V]{Key: key, Value: value})

	evict := c.size > 0 && c.evictList.Len() > c.size
	if evict {
		c.removeOldest()
	}
	return evict
}

// Get looks up a key's value from the cache.
func (c *LRU[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return value, false
	}
	c.evictList.MoveToFront(e)
	return e.Value.(*Entry[K, V]).Value, true
}

// Contains checks if a key is in the cache, without updating the recent-ness
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Remove removes the provided key from the cache, returning if the
// key was contained.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.removeElement(e)
		return true
	}
	return false
}

// Keys returns a slice of the keys in the cache, from oldest to newest.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, len(c.items))
	for e := c.evictList.Back(); e != nil; e = e.Prev() {
		keys = append(keys, e.Value.(*Entry[K, V]).Key)
	}
	return keys
}

// Len returns the number of items in the cache.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Cap returns the capacity of the cache
func (c *LRU[K, V]) Cap() int {
	return c.size
}

func (c *LRU[K, V]) removeOldest() {
	if e := c.evictList.Back(); e != nil {
		c.removeElement(e)
	}
}

func (c *LRU[K, V]) removeElement(e *list.Element) {
	entry := c.evictList.Remove(e).(*Entry[K, V])
	delete(c.items, entry.Key)
	if c.onEvict != nil {
		c.onEvict(entry.Key, entry.Value)
	}
}
