package lru

import (
	"fmt"

	"github.com/sarchlab/mediumcache/cache"
	"github.com/sarchlab/mediumcache/cache/internal/recency"
)

// Builder can build LRU caches.
type Builder[K comparable, V any] struct {
	capacity int
	medium   cache.Medium[K, V]
}

// MakeBuilder creates a new builder with a capacity of 1024 entries.
func MakeBuilder[K comparable, V any]() Builder[K, V] {
	return Builder[K, V]{
		capacity: 1024,
	}
}

// WithCapacity sets the maximum number of resident entries. A capacity of 0
// makes the cache pass every operation through to the medium.
func (b Builder[K, V]) WithCapacity(capacity int) Builder[K, V] {
	b.capacity = capacity
	return b
}

// WithMedium sets the medium that the cache reads from and writes to.
func (b Builder[K, V]) WithMedium(medium cache.Medium[K, V]) Builder[K, V] {
	b.medium = medium
	return b
}

// Build builds an LRU cache.
func (b Builder[K, V]) Build(name string) *Cache[K, V] {
	mustBeValidCapacity(b.capacity)

	if b.medium == nil {
		panic("medium is not set")
	}

	c := &Cache[K, V]{
		name:     name,
		capacity: b.capacity,
		medium:   b.medium,
		index:    make(map[K]recency.Handle),
		list:     recency.New[entry[K, V]](),
	}
	c.Reporter = cache.NewReporter(c)

	return c
}

func mustBeValidCapacity(capacity int) {
	if capacity < 0 {
		panic(fmt.Sprintf("capacity must not be negative, got %d", capacity))
	}
}
