// Package cachetest provides an in-memory medium that records how a cache
// uses it. It is meant for tests of cache engines and of code built on them.
package cachetest

import (
	"errors"
	"sync"

	"github.com/sarchlab/mediumcache/cache"
)

// Operations recorded by Medium.
const (
	OpRead    = "read"
	OpWrite   = "write"
	OpDispose = "dispose"
)

// ErrInjected is the error returned by a Medium whose failure switches are on.
var ErrInjected = errors.New("injected medium failure")

// An Item is the value type that Medium hands to caches.
type Item struct {
	Key    string
	Value  int
	Dirty  bool
	Stale  bool
	Pinned bool
}

// A Call is one recorded interaction between a cache and the medium.
type Call struct {
	Op  string
	Key string
}

// Medium is a map-backed medium that records reads, writes and disposals.
type Medium struct {
	lock sync.Mutex

	data  map[string]int
	calls []Call
	asked []string

	FailRead  bool
	FailWrite bool
}

var _ cache.Medium[string, *Item] = (*Medium)(nil)

// NewMedium creates a Medium holding the given data.
func NewMedium(data map[string]int) *Medium {
	m := &Medium{data: make(map[string]int)}
	for k, v := range data {
		m.data[k] = v
	}

	return m
}

// Read returns a fresh Item for the key.
func (m *Medium) Read(key string) (*Item, bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.calls = append(m.calls, Call{Op: OpRead, Key: key})

	if m.FailRead {
		return nil, false, ErrInjected
	}

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}

	return &Item{Key: key, Value: v}, true, nil
}

// Write stores the item and marks it clean.
func (m *Medium) Write(item *Item) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.calls = append(m.calls, Call{Op: OpWrite, Key: item.Key})

	if m.FailWrite {
		return ErrInjected
	}

	m.data[item.Key] = item.Value
	item.Dirty = false

	return nil
}

// IsDirtyMustRead reports the Stale flag of the item.
func (m *Medium) IsDirtyMustRead(item *Item) bool {
	return item.Stale
}

// IsDirtyMustWrite reports the Dirty flag of the item.
func (m *Medium) IsDirtyMustWrite(item *Item) bool {
	return item.Dirty
}

// CanDispose refuses pinned items.
func (m *Medium) CanDispose(item *Item) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.asked = append(m.asked, item.Key)

	return !item.Pinned
}

// Dispose records the disposal.
func (m *Medium) Dispose(item *Item) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.calls = append(m.calls, Call{Op: OpDispose, Key: item.Key})
}

// Set changes the value of a key in the medium.
func (m *Medium) Set(key string, value int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.data[key] = value
}

// Remove deletes a key from the medium.
func (m *Medium) Remove(key string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.data, key)
}

// Value returns what the medium holds for a key.
func (m *Medium) Value(key string) (int, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	v, ok := m.data[key]

	return v, ok
}

// Calls returns the recorded reads, writes and disposals in order.
func (m *Medium) Calls() []Call {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]Call(nil), m.calls...)
}

// CallsOf returns the keys of the recorded calls of one kind, in order.
func (m *Medium) CallsOf(op string) []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	keys := []string{}
	for _, c := range m.calls {
		if c.Op == op {
			keys = append(keys, c.Key)
		}
	}

	return keys
}

// Asked returns the keys that CanDispose was called with, in order.
func (m *Medium) Asked() []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]string(nil), m.asked...)
}

// Reset forgets the recorded calls.
func (m *Medium) Reset() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.calls = nil
	m.asked = nil
}
