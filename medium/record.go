// Package medium provides media that caches can sit in front of. Values are
// Records identified by string keys. A store keeps one version number per
// key and bumps it on every write, so a cache holding an older version knows
// that another cache has changed the key.
package medium

import (
	"sync"

	"github.com/sarchlab/mediumcache/cache"
)

// A Record is a copy of one key of a store. Records are safe for concurrent
// use.
type Record struct {
	Key string

	lock    sync.Mutex
	data    []byte
	version uint64
	dirty   bool
	pins    int
}

func newRecord(key string, data []byte, version uint64) *Record {
	return &Record{
		Key:     key,
		data:    append([]byte(nil), data...),
		version: version,
	}
}

// NewRecord creates a record that is not yet stored anywhere. It is dirty, so
// a cache that receives it through Put writes it to the store.
func NewRecord(key string, data []byte) *Record {
	r := newRecord(key, data, 0)
	r.dirty = true

	return r
}

// Data returns a copy of the data.
func (r *Record) Data() []byte {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]byte(nil), r.data...)
}

// Set replaces the data and marks the record dirty.
func (r *Record) Set(data []byte) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.data = append([]byte(nil), data...)
	r.dirty = true
}

// Version returns the store version this record was read at or written as.
func (r *Record) Version() uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.version
}

// IsDirty returns true if the record has changes that are not in the store.
func (r *Record) IsDirty() bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.dirty
}

// Pin stops the record from being disposed by caches that negotiate. Pins
// nest.
func (r *Record) Pin() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.pins++
}

// Unpin releases one pin.
func (r *Record) Unpin() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.pins == 0 {
		panic("record " + r.Key + " is not pinned")
	}

	r.pins--
}

// IsPinned returns true if the record holds at least one pin.
func (r *Record) IsPinned() bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.pins > 0
}

// markWritten records that the store now holds the data as version.
func (r *Record) markWritten(version uint64) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.version = version
	r.dirty = false
}

// A Store is a medium of Records that can be seeded and reports how it was
// used.
type Store interface {
	cache.Medium[string, *Record]

	// Seed sets the data of a key without going through a cache.
	Seed(key string, data []byte) error

	// Remove deletes a key without going through a cache.
	Remove(key string) error

	// Counters returns how many operations the store has served.
	Counters() Counters
}
