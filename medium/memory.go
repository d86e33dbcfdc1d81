package medium

import "sync"

type storedValue struct {
	data    []byte
	version uint64
}

// MemoryStore is a Store that keeps its data in a map. Several caches may
// share one MemoryStore. Versions come from a single clock, so a key that is
// removed and seeded again never reuses a version.
type MemoryStore struct {
	counters

	lock  sync.RWMutex
	clock uint64
	data  map[string]storedValue
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]storedValue),
	}
}

// Read returns a new record holding the current data of the key.
func (s *MemoryStore) Read(key string) (*Record, bool, error) {
	s.reads.Add(1)

	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}

	return newRecord(key, v.data, v.version), true, nil
}

// Write stores the data of the record under a new version.
func (s *MemoryStore) Write(r *Record) error {
	s.writes.Add(1)

	data := r.Data()

	s.lock.Lock()
	s.clock++
	version := s.clock
	s.data[r.Key] = storedValue{data: data, version: version}
	s.lock.Unlock()

	r.markWritten(version)

	return nil
}

// IsDirtyMustRead returns true if the key was written since the record was
// read, or removed.
func (s *MemoryStore) IsDirtyMustRead(r *Record) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.data[r.Key]
	if !ok {
		return true
	}

	return v.version > r.Version()
}

// IsDirtyMustWrite returns true if the record was changed.
func (s *MemoryStore) IsDirtyMustWrite(r *Record) bool {
	return r.IsDirty()
}

// CanDispose refuses pinned records.
func (s *MemoryStore) CanDispose(r *Record) bool {
	return s.canDispose(r)
}

// Dispose counts the disposal.
func (s *MemoryStore) Dispose(_ *Record) {
	s.disposals.Add(1)
}

// Seed sets the data of a key under a new version.
func (s *MemoryStore) Seed(key string, data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.clock++
	s.data[key] = storedValue{
		data:    append([]byte(nil), data...),
		version: s.clock,
	}

	return nil
}

// Remove deletes a key.
func (s *MemoryStore) Remove(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.data, key)

	return nil
}

// Len returns the number of keys in the store.
func (s *MemoryStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.data)
}
