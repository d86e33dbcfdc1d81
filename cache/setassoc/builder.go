package setassoc

import (
	"fmt"

	"github.com/sarchlab/mediumcache/cache"
)

// Builder can build set-associative caches.
type Builder[K comparable, V any] struct {
	capacity int
	ways     int
	hasher   Hasher[K]
	medium   cache.Medium[K, V]
}

// MakeBuilder creates a new builder with 256 sets of 4 ways each.
func MakeBuilder[K comparable, V any]() Builder[K, V] {
	return Builder[K, V]{
		capacity: 256,
		ways:     4,
	}
}

// WithCapacity sets the number of sets. A capacity of 0 makes the cache pass
// every operation through to the medium.
func (b Builder[K, V]) WithCapacity(capacity int) Builder[K, V] {
	b.capacity = capacity
	return b
}

// WithWays sets the number of slots in each set.
func (b Builder[K, V]) WithWays(ways int) Builder[K, V] {
	b.ways = ways
	return b
}

// WithHasher sets the function that spreads keys over the sets.
func (b Builder[K, V]) WithHasher(hasher Hasher[K]) Builder[K, V] {
	b.hasher = hasher
	return b
}

// WithMedium sets the medium that the cache reads from and writes to.
func (b Builder[K, V]) WithMedium(medium cache.Medium[K, V]) Builder[K, V] {
	b.medium = medium
	return b
}

// Build builds a set-associative cache.
func (b Builder[K, V]) Build(name string) *Cache[K, V] {
	mustBeValidCapacity(b.capacity)
	mustBeValidWays(b.ways)

	if b.medium == nil {
		panic("medium is not set")
	}

	hasher := b.hasher
	if hasher == nil {
		hasher = DefaultHasher[K]()
	}

	c := &Cache[K, V]{
		name:     name,
		capacity: b.capacity,
		ways:     b.ways,
		hasher:   hasher,
		medium:   b.medium,
		buckets:  make(map[int]*set[K, V]),
	}
	c.Reporter = cache.NewReporter(c)

	return c
}

func mustBeValidCapacity(capacity int) {
	if capacity < 0 {
		panic(fmt.Sprintf("capacity must not be negative, got %d", capacity))
	}
}

func mustBeValidWays(ways int) {
	if ways < 1 {
		panic(fmt.Sprintf("ways must be at least 1, got %d", ways))
	}
}
