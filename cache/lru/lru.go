// Package lru provides a cache that evicts the least recently used entry.
//
// Eviction is negotiated with the medium. The tail of the recency list is
// asked whether it can be disposed. An entry that refuses is moved to the
// head and the new tail is asked instead. If every resident entry refuses
// within one pass, the operation that needed the room fails with
// cache.ErrCacheFull.
//
// Get moves a hit to the head of the recency list. Put overwrites a resident
// entry in place and does not change its position.
package lru

import (
	"errors"
	"sync"

	"github.com/sarchlab/mediumcache/cache"
	"github.com/sarchlab/mediumcache/cache/internal/recency"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is an LRU cache in front of a medium. It is safe for concurrent use.
// Medium calls and hooks run while the cache is locked, so neither may call
// back into the same cache.
type Cache[K comparable, V any] struct {
	*cache.Reporter

	name string

	lock     sync.Mutex
	capacity int
	loaded   int
	index    map[K]recency.Handle
	list     *recency.List[entry[K, V]]
	medium   cache.Medium[K, V]
}

var _ cache.Cache[string, int] = (*Cache[string, int])(nil)

// Name returns the name of the cache.
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Get returns the value of a key. A resident entry is moved to the head of
// the recency list unless it is stale, in which case it is re-read in place.
func (c *Cache[K, V]) Get(key K) (V, bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.capacity == 0 {
		c.Report(cache.HookPosPassThrough, key, nil)
		return c.medium.Read(key)
	}

	if h, ok := c.index[key]; ok {
		return c.getResident(key, h)
	}

	return c.getMissing(key)
}

func (c *Cache[K, V]) getResident(key K, h recency.Handle) (V, bool, error) {
	var zero V

	e := c.list.Value(h)
	if !c.medium.IsDirtyMustRead(e.value) {
		c.list.MoveToFront(h)
		c.Report(cache.HookPosHit, key, e.value)

		return e.value, true, nil
	}

	value, found, err := c.medium.Read(key)
	if err != nil {
		return zero, false, err
	}

	if !found {
		c.unlink(key, h)
		c.medium.Dispose(e.value)
		c.Report(cache.HookPosDispose, key, e.value)

		return zero, false, nil
	}

	e.value = value
	c.list.Set(h, e)
	c.Report(cache.HookPosRefresh, key, value)

	return value, true, nil
}

func (c *Cache[K, V]) getMissing(key K) (V, bool, error) {
	var zero V

	c.Report(cache.HookPosMiss, key, nil)

	err := c.reserve()
	if err != nil {
		return zero, false, err
	}

	value, found, err := c.medium.Read(key)
	if err != nil || !found {
		c.loaded--
		return zero, false, err
	}

	c.insert(key, value)

	return value, true, nil
}

// Put stores a value. A resident entry is overwritten in place. If the medium
// reports the stored value as dirty, it is written through.
func (c *Cache[K, V]) Put(key K, value V) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if h, ok := c.index[key]; ok {
		c.list.Set(h, entry[K, V]{key: key, value: value})
	} else {
		if c.capacity == 0 {
			c.Report(cache.HookPosPassThrough, key, value)
			return c.medium.Write(value)
		}

		err := c.reserve()
		if err != nil {
			return err
		}

		c.insert(key, value)
	}

	return cache.WriteIfDirty(c.medium, c.Reporter, key, value)
}

// Delete removes a resident entry. The value is written if dirty and then
// disposed, without asking the medium for permission.
func (c *Cache[K, V]) Delete(key K) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	h, ok := c.index[key]
	if !ok {
		return nil
	}

	e := c.list.Value(h)
	c.unlink(key, h)
	c.Report(cache.HookPosDelete, key, e.value)

	return cache.Retire(c.medium, c.Reporter, key, e.value)
}

// Flush retires every resident entry, least recently used first. All entries
// leave the cache even if some writes fail; the failures are joined.
func (c *Cache[K, V]) Flush() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	var errs []error

	for c.list.Len() > 0 {
		h := c.list.Back()
		e := c.list.Value(h)
		c.unlink(e.key, h)

		err := cache.Retire(c.medium, c.Reporter, e.key, e.value)
		if err != nil {
			errs = append(errs, err)
		}
	}

	c.Report(cache.HookPosFlush, nil, nil)

	return errors.Join(errs...)
}

// SetCapacity changes the number of entries the cache may hold. Shrinking
// evicts with the same negotiation as normal operation. If the cache cannot
// shrink far enough, the previous capacity is restored and the error is
// returned. Entries evicted before the failure stay evicted.
func (c *Cache[K, V]) SetCapacity(n int) error {
	mustBeValidCapacity(n)

	c.lock.Lock()
	defer c.lock.Unlock()

	prev := c.capacity
	c.capacity = n

	for c.loaded > c.capacity {
		err := c.evictTail()
		if err != nil {
			c.capacity = prev
			return err
		}
	}

	return nil
}

// Capacity returns the maximum number of resident entries.
func (c *Cache[K, V]) Capacity() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.capacity
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.loaded
}

// Keys returns the resident keys from the most to the least recently used.
func (c *Cache[K, V]) Keys() []K {
	c.lock.Lock()
	defer c.lock.Unlock()

	keys := make([]K, 0, c.list.Len())
	for h := c.list.Front(); h != recency.Nil; h = c.list.Next(h) {
		keys = append(keys, c.list.Value(h).key)
	}

	return keys
}

// Medium returns the medium the cache talks to.
func (c *Cache[K, V]) Medium() cache.Medium[K, V] {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.medium
}

// SetMedium replaces the medium.
func (c *Cache[K, V]) SetMedium(m cache.Medium[K, V]) {
	if m == nil {
		panic("medium must not be nil")
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.medium = m
}

// reserve counts a new entry and makes room for it. On failure the count is
// rolled back.
func (c *Cache[K, V]) reserve() error {
	c.loaded++

	if c.loaded <= c.capacity {
		return nil
	}

	err := c.evictTail()
	if err != nil {
		c.loaded--
		return err
	}

	return nil
}

// evictTail evicts the least recently used entry that agrees to be disposed.
// Entries that refuse cut in line to the head. After one full pass of
// refusals the list is back in its original order and ErrCacheFull is
// returned.
func (c *Cache[K, V]) evictTail() error {
	for range c.list.Len() {
		h := c.list.Back()
		e := c.list.Value(h)

		if c.medium.CanDispose(e.value) {
			c.unlink(e.key, h)
			c.Report(cache.HookPosEvict, e.key, e.value)

			return cache.Retire(c.medium, c.Reporter, e.key, e.value)
		}

		c.Report(cache.HookPosRefuse, e.key, e.value)
		c.list.MoveToFront(h)
	}

	return cache.ErrCacheFull
}

func (c *Cache[K, V]) insert(key K, value V) {
	h := c.list.PushFront(entry[K, V]{key: key, value: value})
	c.index[key] = h
}

func (c *Cache[K, V]) unlink(key K, h recency.Handle) {
	delete(c.index, key)
	c.list.Remove(h)
	c.loaded--
}
