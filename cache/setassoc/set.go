package setassoc

type slot[K comparable, V any] struct {
	key   K
	value V
	valid bool
}

// A set is one bucket of the cache. Slots are not kept in any order.
// toDispose points at the slot to evict next when the set is full.
type set[K comparable, V any] struct {
	slots     []slot[K, V]
	toDispose int
}

func newSet[K comparable, V any](ways int) *set[K, V] {
	return &set[K, V]{
		slots: make([]slot[K, V], ways),
	}
}

func (s *set[K, V]) find(key K) int {
	for i := range s.slots {
		if s.slots[i].valid && s.slots[i].key == key {
			return i
		}
	}

	return -1
}

func (s *set[K, V]) firstFree() int {
	for i := range s.slots {
		if !s.slots[i].valid {
			return i
		}
	}

	return -1
}

func (s *set[K, V]) numValid() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].valid {
			n++
		}
	}

	return n
}

func (s *set[K, V]) store(i int, key K, value V) {
	s.slots[i] = slot[K, V]{key: key, value: value, valid: true}
}

func (s *set[K, V]) clear(i int) slot[K, V] {
	old := s.slots[i]
	s.slots[i] = slot[K, V]{}

	return old
}
