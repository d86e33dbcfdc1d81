package cache

import (
	"errors"

	"github.com/sarchlab/mediumcache/hooking"
)

// ErrCacheFull is returned when a cache needs room but none of the resident
// values can be evicted.
var ErrCacheFull = errors.New("cache is full")

// A Cache holds values read from a Medium.
type Cache[K comparable, V any] interface {
	hooking.NamedHookable

	// Get returns the value of a key, reading it from the medium on a miss
	// or when the cached copy is stale.
	Get(key K) (V, bool, error)

	// Put stores a value. If the medium reports the value as dirty after it
	// is stored, the value is written through.
	Put(key K, value V) error

	// Delete removes a key from the cache. The value is written if dirty and
	// then disposed. Deleting a key that is not resident does nothing.
	Delete(key K) error

	// Flush retires every resident value without negotiation.
	Flush() error

	// SetCapacity resizes the cache, evicting values if it shrinks.
	SetCapacity(n int) error

	// Capacity returns the current capacity.
	Capacity() int

	// Len returns the number of resident values.
	Len() int

	// Medium returns the medium the cache currently talks to.
	Medium() Medium[K, V]

	// SetMedium replaces the medium. Subsequent operations use the new one.
	SetMedium(m Medium[K, V])
}
