// Package setassoc provides an N-way set-associative cache.
//
// Keys are hashed into one of Capacity sets, and each set holds up to Ways
// entries. There is no global order. When a set is full, the slot under the
// set's round-robin cursor is evicted without asking the medium. A set only
// has Ways slots, so honoring refusals could starve it.
//
// Changing the capacity or the number of ways rehashes every resident entry.
// Entries that do not fit into their new set are retired.
package setassoc

import (
	"errors"
	"sort"
	"sync"

	"github.com/sarchlab/mediumcache/cache"
)

// Cache is a set-associative cache in front of a medium. It is safe for
// concurrent use. Medium calls and hooks run while the cache is locked, so
// neither may call back into the same cache.
type Cache[K comparable, V any] struct {
	*cache.Reporter

	name string

	lock     sync.Mutex
	capacity int
	ways     int
	hasher   Hasher[K]
	buckets  map[int]*set[K, V]
	medium   cache.Medium[K, V]
}

var _ cache.Cache[string, int] = (*Cache[string, int])(nil)

// Name returns the name of the cache.
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Get returns the value of a key, reading it from the medium on a miss or
// when the cached copy is stale.
func (c *Cache[K, V]) Get(key K) (V, bool, error) {
	var zero V

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.capacity == 0 {
		c.Report(cache.HookPosPassThrough, key, nil)
		return c.medium.Read(key)
	}

	s := c.lookupSet(key, false)
	if s != nil {
		if i := s.find(key); i >= 0 {
			return c.getResident(s, i)
		}
	}

	c.Report(cache.HookPosMiss, key, nil)

	if s == nil {
		return c.fill(c.lookupSet(key, true), 0, key)
	}

	i, err := c.makeRoom(s)
	if err != nil {
		return zero, false, err
	}

	return c.fill(s, i, key)
}

func (c *Cache[K, V]) getResident(s *set[K, V], i int) (V, bool, error) {
	var zero V

	sl := s.slots[i]
	if !c.medium.IsDirtyMustRead(sl.value) {
		c.Report(cache.HookPosHit, sl.key, sl.value)
		return sl.value, true, nil
	}

	value, found, err := c.medium.Read(sl.key)
	if err != nil {
		return zero, false, err
	}

	if !found {
		s.clear(i)
		c.medium.Dispose(sl.value)
		c.Report(cache.HookPosDispose, sl.key, sl.value)

		return zero, false, nil
	}

	s.store(i, sl.key, value)
	c.Report(cache.HookPosRefresh, sl.key, value)

	return value, true, nil
}

// fill reads a key from the medium into slot i and returns what was read.
func (c *Cache[K, V]) fill(s *set[K, V], i int, key K) (V, bool, error) {
	value, found, err := c.medium.Read(key)
	if err != nil || !found {
		var zero V
		return zero, false, err
	}

	s.store(i, key, value)

	return value, true, nil
}

// Put stores a value. If the medium reports the stored value as dirty, it is
// written through.
func (c *Cache[K, V]) Put(key K, value V) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.capacity == 0 {
		c.Report(cache.HookPosPassThrough, key, value)
		return c.medium.Write(value)
	}

	s := c.lookupSet(key, true)

	i := s.find(key)
	if i < 0 {
		var err error

		i, err = c.makeRoom(s)
		if err != nil {
			return err
		}
	}

	s.store(i, key, value)

	return cache.WriteIfDirty(c.medium, c.Reporter, key, value)
}

// Delete removes a resident entry. The value is written if dirty and then
// disposed.
func (c *Cache[K, V]) Delete(key K) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.capacity == 0 {
		return nil
	}

	s := c.lookupSet(key, false)
	if s == nil {
		return nil
	}

	i := s.find(key)
	if i < 0 {
		return nil
	}

	sl := s.clear(i)
	c.Report(cache.HookPosDelete, sl.key, sl.value)

	return cache.Retire(c.medium, c.Reporter, sl.key, sl.value)
}

// Flush retires every resident entry, set by set in ascending order. All
// entries leave the cache even if some writes fail; the failures are joined.
func (c *Cache[K, V]) Flush() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	var errs []error

	for _, id := range sortedSetIDs(c.buckets) {
		s := c.buckets[id]
		for i := range s.slots {
			if !s.slots[i].valid {
				continue
			}

			sl := s.clear(i)

			err := cache.Retire(c.medium, c.Reporter, sl.key, sl.value)
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	c.buckets = make(map[int]*set[K, V])
	c.Report(cache.HookPosFlush, nil, nil)

	return errors.Join(errs...)
}

// SetCapacity changes the number of sets and rehashes every resident entry.
// It never fails for lack of room; entries that do not fit are retired. The
// returned error comes from the medium.
func (c *Cache[K, V]) SetCapacity(n int) error {
	mustBeValidCapacity(n)

	c.lock.Lock()
	defer c.lock.Unlock()

	if n == c.capacity {
		return nil
	}

	return c.rehash(n, c.ways)
}

// SetWays changes the number of slots per set and rehashes every resident
// entry.
func (c *Cache[K, V]) SetWays(n int) error {
	mustBeValidWays(n)

	c.lock.Lock()
	defer c.lock.Unlock()

	if n == c.ways {
		return nil
	}

	return c.rehash(c.capacity, n)
}

// Capacity returns the number of sets.
func (c *Cache[K, V]) Capacity() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.capacity
}

// Ways returns the number of slots per set.
func (c *Cache[K, V]) Ways() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.ways
}

// Buckets returns the number of sets that have been touched since the last
// flush or rehash.
func (c *Cache[K, V]) Buckets() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return len(c.buckets)
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	n := 0
	for _, s := range c.buckets {
		n += s.numValid()
	}

	return n
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

func (c *Cache[K, V]) setID(key K) int {
	return int(c.hasher(key) % uint64(c.capacity))
}

func (c *Cache[K, V]) lookupSet(key K, create bool) *set[K, V] {
	id := c.setID(key)

	s, ok := c.buckets[id]
	if !ok && create {
		s = newSet[K, V](c.ways)
		c.buckets[id] = s
	}

	return s
}

// makeRoom returns the index of a free slot in s. If s is full, the slot
// under the round-robin cursor is retired and the cursor advances.
func (c *Cache[K, V]) makeRoom(s *set[K, V]) (int, error) {
	if i := s.firstFree(); i >= 0 {
		return i, nil
	}

	i := s.toDispose
	s.toDispose = (s.toDispose + 1) % c.ways

	victim := s.clear(i)
	c.Report(cache.HookPosEvict, victim.key, victim.value)

	err := cache.Retire(c.medium, c.Reporter, victim.key, victim.value)
	if err != nil {
		return -1, err
	}

	return i, nil
}

func (c *Cache[K, V]) rehash(capacity, ways int) error {
	old := c.buckets

	c.capacity = capacity
	c.ways = ways
	c.buckets = make(map[int]*set[K, V])

	var errs []error

	for _, id := range sortedSetIDs(old) {
		for _, sl := range old[id].slots {
			if !sl.valid {
				continue
			}

			if c.capacity > 0 {
				s := c.lookupSet(sl.key, true)
				if i := s.firstFree(); i >= 0 {
					s.store(i, sl.key, sl.value)
					continue
				}
			}

			c.Report(cache.HookPosEvict, sl.key, sl.value)

			err := cache.Retire(c.medium, c.Reporter, sl.key, sl.value)
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func sortedSetIDs[K comparable, V any](buckets map[int]*set[K, V]) []int {
	ids := make([]int, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}
