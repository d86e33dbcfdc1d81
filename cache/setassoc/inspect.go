package setassoc

// State is a copy of the bookkeeping of a Cache.
type State[K comparable] struct {
	Name     string
	Capacity int
	Ways     int
	Len      int

	// Sets holds the touched sets in ascending ID order.
	Sets []SetState[K]
}

// SetState is a copy of one set.
type SetState[K comparable] struct {
	ID        int
	ToDispose int
	Slots     []SlotState[K]
}

// SlotState is a copy of one slot. Key is the zero value if Valid is false.
type SlotState[K comparable] struct {
	Key   K
	Valid bool
}

// Inspect returns a State taken under the cache lock. The result shares
// nothing with the cache and can be read while the cache is in use.
func (c *Cache[K, V]) Inspect() any {
	c.lock.Lock()
	defer c.lock.Unlock()

	state := State[K]{
		Name:     c.name,
		Capacity: c.capacity,
		Ways:     c.ways,
		Sets:     make([]SetState[K], 0, len(c.buckets)),
	}

	for _, id := range sortedSetIDs(c.buckets) {
		s := c.buckets[id]
		ss := SetState[K]{
			ID:        id,
			ToDispose: s.toDispose,
			Slots:     make([]SlotState[K], len(s.slots)),
		}

		for i, sl := range s.slots {
			if sl.valid {
				ss.Slots[i] = SlotState[K]{Key: sl.key, Valid: true}
				state.Len++
			}
		}

		state.Sets = append(state.Sets, ss)
	}

	return state
}
