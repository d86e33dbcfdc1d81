package lru

import "github.com/sarchlab/mediumcache/cache/internal/recency"

// State is a copy of the bookkeeping of a Cache.
type State[K comparable] struct {
	Name     string
	Capacity int
	Len      int

	// Keys runs from the most to the least recently used.
	Keys []K
}

// Inspect returns a State taken under the cache lock. The result shares
// nothing with the cache and can be read while the cache is in use.
func (c *Cache[K, V]) Inspect() any {
	c.lock.Lock()
	defer c.lock.Unlock()

	keys := make([]K, 0, c.list.Len())
	for h := c.list.Front(); h != recency.Nil; h = c.list.Next(h) {
		keys = append(keys, c.list.Value(h).key)
	}

	return State[K]{
		Name:     c.name,
		Capacity: c.capacity,
		Len:      c.loaded,
		Keys:     keys,
	}
}
